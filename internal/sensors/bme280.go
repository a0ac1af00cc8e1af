package sensors

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

// The Enviro+ wires the BME280 to the secondary address.
const bme280Addr = 0x76

// ClimateReading carries one BME280 sample in the units the measurement
// log stores.
type ClimateReading struct {
	Temperature float64 // degrees Celsius
	Pressure    float64 // hectopascals
	Humidity    float64 // percent relative humidity
}

// BME280 reads temperature, barometric pressure and relative humidity.
type BME280 struct {
	dev    *bmxx80.Dev
	logger *slog.Logger
}

func NewBME280(bus i2c.Bus, logger *slog.Logger) (*BME280, error) {
	dev, err := bmxx80.NewI2C(bus, bme280Addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("bme280 init: %w", err)
	}

	return &BME280{dev: dev, logger: logger}, nil
}

func (b *BME280) Read() (ClimateReading, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return ClimateReading{}, fmt.Errorf("bme280 sense: %w", err)
	}

	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	reading := ClimateReading{
		Temperature: e.Temperature.Celsius(),
		Pressure:    pressurePa / 100.0, // 1 hPa = 100 Pa
		Humidity:    float64(e.Humidity) / float64(physic.PercentRH),
	}

	b.logger.Debug("BME280 read",
		"temperature", reading.Temperature,
		"pressure", reading.Pressure,
		"humidity", reading.Humidity,
	)

	return reading, nil
}
