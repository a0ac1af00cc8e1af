// Package config resolves the logger's runtime configuration.
//
// Precedence, highest first: command line flags (applied by the CLI layer),
// OS environment variables, a .env file in the working directory, and the
// built-in defaults. godotenv never overrides variables that are already
// set, which is what gives the environment priority over the file.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LevelCritical sits above slog's built-in levels. The level map has five
// names and slog only ships four.
const LevelCritical = slog.LevelError + 4

type Config struct {
	// DBFile is the SQLite file measurements append to, relative to the
	// working directory unless absolute.
	DBFile string `envconfig:"ENVIROPLUS_DB_FILE" default:"enviroplus_data.db" validate:"required"`

	// LogLevel is the minimum severity that gets emitted.
	LogLevel string `envconfig:"ENVIROPLUS_LOG_LEVEL" default:"info" validate:"oneof=debug info warning error critical"`

	// I2CBus names the bus the climate, light and gas sensors sit on.
	// Empty picks the first bus the host exposes.
	I2CBus string `envconfig:"ENVIROPLUS_I2C_BUS" default:""`

	// ADCAddress is the I2C address of the gas sensor's ADS1015.
	ADCAddress uint16 `envconfig:"ENVIROPLUS_ADC_ADDRESS" default:"0x49"`

	// SerialPort is the particulate sensor's UART device.
	SerialPort string `envconfig:"ENVIROPLUS_SERIAL_PORT" default:"/dev/ttyAMA0" validate:"required"`

	// FrameWait bounds how long a run waits for a particulate frame
	// before giving up on the sensor.
	FrameWait time.Duration `envconfig:"ENVIROPLUS_FRAME_WAIT" default:"5s" validate:"gt=0"`
}

// Load resolves the configuration from the environment and validates it.
func Load() (*Config, error) {
	// Missing .env files are fine; most deployments configure through
	// the environment or not at all.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct rules. The CLI calls
// it again after applying flag overrides.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SlogLevel maps the configured level name onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	}
	return slog.LevelInfo
}
