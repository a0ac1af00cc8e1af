// Package app wires the sensor drivers to the measurement store for one
// logging run.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/s-boardman/enviroplus-datalogger/internal/collector"
	"github.com/s-boardman/enviroplus-datalogger/internal/config"
	"github.com/s-boardman/enviroplus-datalogger/internal/database"
	"github.com/s-boardman/enviroplus-datalogger/internal/sensors"
)

// Run performs a single measure-and-log cycle: bring up the sensors, make
// sure the table exists, stamp the clock, sweep the board and append the
// row. A failed append is logged and swallowed so the exit code reflects
// the measurement, not the disk; everything before the append fails the
// run.
func Run(cfg *config.Config, logger *slog.Logger) error {
	c, cleanup, err := buildCollector(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	store := database.NewStore(cfg.DBFile, logger)
	if err := store.EnsureSchema(); err != nil {
		return fmt.Errorf("prepare database: %w", err)
	}

	takenAt := time.Now()
	logger.Info("Reading sensor data", "timestamp", takenAt.Format(time.RFC3339))

	m, err := c.Collect()
	if err != nil {
		return err
	}
	m.Timestamp = takenAt

	logger.Debug("Sensor sweep complete", "measurement", m)

	if err := store.Append(m); err != nil {
		logger.Error("Error logging data", "error", err)
		return nil
	}

	logger.Info("Data logged successfully, exiting", "db_file", cfg.DBFile)
	return nil
}

// buildCollector initializes the four hardware drivers. Any failure here is
// fatal to the run; there is no degraded mode with a missing sensor.
func buildCollector(cfg *config.Config, logger *slog.Logger) (*collector.Collector, func(), error) {
	bus, err := sensors.OpenI2C(cfg.I2CBus)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize i2c: %w", err)
	}

	climate, err := sensors.NewBME280(bus, logger)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("initialize climate sensor: %w", err)
	}

	light, err := sensors.NewLTR559(bus, logger)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("initialize light sensor: %w", err)
	}

	gas, err := sensors.NewMICS6814(bus, cfg.ADCAddress, logger)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("initialize gas sensor: %w", err)
	}

	port, err := sensors.OpenSerial(cfg.SerialPort, cfg.FrameWait)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("initialize particulate sensor: %w", err)
	}
	particulate := sensors.NewPMS5003(port, cfg.FrameWait, logger)

	cleanup := func() {
		if err := port.Close(); err != nil {
			logger.Debug("Failed to close serial port", "error", err)
		}
		if err := bus.Close(); err != nil {
			logger.Debug("Failed to close i2c bus", "error", err)
		}
	}

	return collector.New(climate, light, particulate, gas, logger), cleanup, nil
}
