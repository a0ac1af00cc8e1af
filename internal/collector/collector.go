// Package collector assembles one measurement from the four sensor
// providers on the board.
package collector

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/s-boardman/enviroplus-datalogger/internal/models"
	"github.com/s-boardman/enviroplus-datalogger/internal/sensors"
)

type ClimateSensor interface {
	Read() (sensors.ClimateReading, error)
}

type LightSensor interface {
	Read() (sensors.LightReading, error)
}

type ParticulateSensor interface {
	Read() (sensors.ParticulateReading, error)
}

type GasSensor interface {
	ReadAll() (sensors.GasReading, error)
}

// Collector queries each sensor exactly once per Collect call. Only the
// particulate sensor may fail a collection and leave it standing: its read
// timeout clears all six particulate fields and the sweep carries on. Any
// other sensor error, including corrupt particulate data, aborts the
// collection with nothing to persist.
type Collector struct {
	climate     ClimateSensor
	light       LightSensor
	particulate ParticulateSensor
	gas         GasSensor
	logger      *slog.Logger
}

func New(climate ClimateSensor, light LightSensor, particulate ParticulateSensor, gas GasSensor, logger *slog.Logger) *Collector {
	return &Collector{
		climate:     climate,
		light:       light,
		particulate: particulate,
		gas:         gas,
		logger:      logger,
	}
}

// Collect performs one full sensor sweep. The returned measurement has no
// timestamp; stamping it is the caller's business.
func (c *Collector) Collect() (*models.Measurement, error) {
	climate, err := c.climate.Read()
	if err != nil {
		return nil, fmt.Errorf("climate read: %w", err)
	}

	light, err := c.light.Read()
	if err != nil {
		return nil, fmt.Errorf("light read: %w", err)
	}

	m := &models.Measurement{
		Temperature:    climate.Temperature,
		Pressure:       climate.Pressure,
		Humidity:       climate.Humidity,
		LightLux:       light.Lux,
		LightProximity: light.Proximity,
	}

	particulate, err := c.particulate.Read()
	switch {
	case errors.Is(err, sensors.ErrReadTimeout):
		c.logger.Warn("Particulate sensor read timeout, skipping particulate matter data", "error", err)
	case err != nil:
		return nil, fmt.Errorf("particulate read: %w", err)
	default:
		if err := fillParticulates(m, particulate); err != nil {
			return nil, err
		}
	}

	gas, err := c.gas.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("gas read: %w", err)
	}
	m.Oxidising = gas.Oxidising
	m.Reducing = gas.Reducing
	m.NH3 = gas.NH3

	return m, nil
}

// fillParticulates copies the six concentration slots into the record. The
// coarse environmental value deliberately comes from the sensor's max-size
// bin rather than a literal PM10 request; the frame has no such slot.
func fillParticulates(m *models.Measurement, r sensors.ParticulateReading) error {
	var firstErr error
	slot := func(size sensors.Size, basis sensors.Basis) *float64 {
		v, err := r.Concentration(size, basis)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return &v
	}

	m.PM1Standard = slot(sensors.SizePM1, sensors.BasisStandard)
	m.PM25Standard = slot(sensors.SizePM25, sensors.BasisStandard)
	m.PM10Standard = slot(sensors.SizePM10, sensors.BasisStandard)
	m.PM1Env = slot(sensors.SizePM1, sensors.BasisEnvironmental)
	m.PM25Env = slot(sensors.SizePM25, sensors.BasisEnvironmental)
	m.PM10Env = slot(sensors.SizeMax, sensors.BasisEnvironmental)

	if firstErr != nil {
		return fmt.Errorf("particulate concentration: %w", firstErr)
	}
	return nil
}
