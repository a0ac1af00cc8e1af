package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "enviroplus_data.db", cfg.DBFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.I2CBus)
	assert.Equal(t, uint16(0x49), cfg.ADCAddress)
	assert.Equal(t, "/dev/ttyAMA0", cfg.SerialPort)
	assert.Equal(t, 5*time.Second, cfg.FrameWait)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ENVIROPLUS_DB_FILE", "/var/lib/enviroplus/air.db")
	t.Setenv("ENVIROPLUS_LOG_LEVEL", "debug")
	t.Setenv("ENVIROPLUS_ADC_ADDRESS", "0x48")
	t.Setenv("ENVIROPLUS_SERIAL_PORT", "/dev/serial0")
	t.Setenv("ENVIROPLUS_FRAME_WAIT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/enviroplus/air.db", cfg.DBFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint16(0x48), cfg.ADCAddress)
	assert.Equal(t, "/dev/serial0", cfg.SerialPort)
	assert.Equal(t, 2*time.Second, cfg.FrameWait)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	dotenv := "ENVIROPLUS_DB_FILE=dotenv.db\nENVIROPLUS_LOG_LEVEL=warning\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		// godotenv loads the file into the process environment.
		os.Unsetenv("ENVIROPLUS_DB_FILE")
	})

	// A variable that is already set wins over the file.
	t.Setenv("ENVIROPLUS_LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dotenv.db", cfg.DBFile)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("ENVIROPLUS_LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}

func TestLoad_RejectsNegativeFrameWait(t *testing.T) {
	t.Setenv("ENVIROPLUS_FRAME_WAIT", "-1s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FrameWait")
}

func TestConfig_Validate_AfterOverride(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	// The CLI mutates the loaded config with flag values and re-validates.
	cfg.LogLevel = "trace"
	assert.Error(t, cfg.Validate())

	cfg.LogLevel = "error"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"critical", LevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			assert.Equal(t, tt.want, cfg.SlogLevel())
		})
	}

	// critical must sit above every built-in level so it still suppresses
	// plain errors.
	assert.Greater(t, LevelCritical, slog.LevelError)
}
