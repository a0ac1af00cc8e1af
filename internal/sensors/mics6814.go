package sensors

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

const (
	// DefaultADCAddr is where the Enviro+ wires the gas ADC, not the
	// ADS1015 power-on default of 0x48.
	DefaultADCAddr = 0x49

	gasFullScale  = 6144 * physic.MilliVolt
	gasSampleRate = 1600 * physic.Hertz

	// Each sensor element sits in a divider against a 56k reference on
	// the 3.3V rail.
	gasSeriesOhms  = 56000.0
	gasSupplyVolts = 3.3
)

// GasReading carries the three MICS6814 element resistances in Ohms.
// Resistance, not concentration: the elements need per-site calibration
// before ppm means anything, so the raw resistances are what gets logged.
type GasReading struct {
	Oxidising float64
	Reducing  float64
	NH3       float64
}

// MICS6814 reads the triple gas sensor through the board's ADS1015 ADC,
// one single-ended channel per element.
type MICS6814 struct {
	oxidising analog.PinADC
	reducing  analog.PinADC
	nh3       analog.PinADC
	logger    *slog.Logger
}

func NewMICS6814(bus i2c.Bus, addr uint16, logger *slog.Logger) (*MICS6814, error) {
	adc, err := ads1x15.NewADS1015(bus, &ads1x15.Opts{I2cAddress: addr})
	if err != nil {
		return nil, fmt.Errorf("ads1015 init: %w", err)
	}

	channels := []ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2}
	pins := make([]analog.PinADC, len(channels))
	for i, ch := range channels {
		pin, err := adc.PinForChannel(ch, gasFullScale, gasSampleRate, ads1x15.SaveEnergy)
		if err != nil {
			return nil, fmt.Errorf("ads1015 channel %d: %w", i, err)
		}
		pins[i] = pin
	}

	return &MICS6814{
		oxidising: pins[0],
		reducing:  pins[1],
		nh3:       pins[2],
		logger:    logger,
	}, nil
}

// ReadAll samples all three elements. A failure on any channel fails the
// whole reading; there is no partial gas measurement.
func (m *MICS6814) ReadAll() (GasReading, error) {
	ox, err := m.readOhms(m.oxidising)
	if err != nil {
		return GasReading{}, fmt.Errorf("gas oxidising read: %w", err)
	}
	red, err := m.readOhms(m.reducing)
	if err != nil {
		return GasReading{}, fmt.Errorf("gas reducing read: %w", err)
	}
	nh3, err := m.readOhms(m.nh3)
	if err != nil {
		return GasReading{}, fmt.Errorf("gas nh3 read: %w", err)
	}

	reading := GasReading{Oxidising: ox, Reducing: red, NH3: nh3}

	m.logger.Debug("MICS6814 read", "oxidising", ox, "reducing", red, "nh3", nh3)

	return reading, nil
}

func (m *MICS6814) readOhms(pin analog.PinADC) (float64, error) {
	sample, err := pin.Read()
	if err != nil {
		return 0, err
	}
	volts := float64(sample.V) / float64(physic.Volt)
	return elementResistance(volts), nil
}

// elementResistance converts a divider voltage to the element's resistance.
// A reading at or above the supply rail means the divider is saturated and
// reports as 0 rather than a division blowing up.
func elementResistance(volts float64) float64 {
	if volts >= gasSupplyVolts {
		return 0
	}
	return volts * gasSeriesOhms / (gasSupplyVolts - volts)
}
