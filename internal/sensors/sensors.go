// Package sensors drives the four measurement providers on the Pimoroni
// Enviro+ board: the BME280 climate sensor, the LTR-559 light and proximity
// sensor, the MICS6814 analog gas sensor behind an ADS1015 ADC, and the
// PMS5003 particulate matter sensor on the serial port.
//
// Each driver exposes a single blocking read that returns fully converted
// values. The callers never see raw registers or frames.
package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// OpenI2C initializes the periph host drivers and opens an I2C bus. An empty
// name selects the first available bus, which on a Raspberry Pi is the one
// the Enviro+ header sits on.
func OpenI2C(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus %q: %w", name, err)
	}

	return bus, nil
}
