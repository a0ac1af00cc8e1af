package sensors

import (
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// LTR-559 register map, as far as this driver needs it.
const (
	ltr559Addr   = 0x23
	ltr559PartID = 0x92 // part 0x09, revision 0x02

	regALSControl  = 0x80
	regPSControl   = 0x81
	regPSLED       = 0x82
	regPSNPulses   = 0x83
	regPSMeasRate  = 0x84
	regALSMeasRate = 0x85
	regPartID      = 0x86
	regALSData     = 0x88 // ch1 lo, ch1 hi, ch0 lo, ch0 hi
	regALSPSStatus = 0x8C
	regPSData      = 0x8D // lo, hi (11 bits)

	alsControlActive = 0x01
	alsControlReset  = 0x02
	alsControlGain4X = 0x02 << 2

	// 50ms integration, 50ms repeat rate.
	alsMeasRate50ms = 0x01 << 3

	// Active with the saturation indicator on.
	psControlActive = 0x23
	// 30kHz pulses at 100% duty, 50mA.
	psLEDDefault = 0x1B
	psNPulses    = 0x01
	// 100ms repeat rate.
	psMeasRate100ms = 0x02

	statusPSData  = 1 << 0
	statusALSData = 1 << 2
)

// Lux conversion coefficients, indexed by the CH1/(CH0+CH1) ratio band.
var (
	ltr559Ch0Coeff = [4]float64{17743, 42785, 5926, 0}
	ltr559Ch1Coeff = [4]float64{-11059, 19548, -1185, -228}
)

// LightReading carries one ambient light and proximity sample.
type LightReading struct {
	Lux       float64
	Proximity float64 // raw counts, 0 when nothing is near
}

// LTR559 reads ambient light and proximity. The chip has no ready-made
// periph driver, so this speaks to the registers directly.
type LTR559 struct {
	dev    i2c.Dev
	logger *slog.Logger

	gain          float64
	integrationMS float64
}

func NewLTR559(bus i2c.Bus, logger *slog.Logger) (*LTR559, error) {
	l := &LTR559{
		dev:           i2c.Dev{Bus: bus, Addr: ltr559Addr},
		logger:        logger,
		gain:          4,
		integrationMS: 50,
	}

	var id [1]byte
	if err := l.readReg(regPartID, id[:]); err != nil {
		return nil, fmt.Errorf("ltr559 probe: %w", err)
	}
	if id[0] != ltr559PartID {
		return nil, fmt.Errorf("ltr559 not found: part id %#02x, want %#02x", id[0], ltr559PartID)
	}

	if err := l.reset(); err != nil {
		return nil, err
	}

	setup := []struct {
		reg, value byte
	}{
		{regALSControl, alsControlActive | alsControlGain4X},
		{regALSMeasRate, alsMeasRate50ms},
		{regPSLED, psLEDDefault},
		{regPSNPulses, psNPulses},
		{regPSControl, psControlActive},
		{regPSMeasRate, psMeasRate100ms},
	}
	for _, s := range setup {
		if err := l.writeReg(s.reg, s.value); err != nil {
			return nil, fmt.Errorf("ltr559 setup reg %#02x: %w", s.reg, err)
		}
	}

	return l, nil
}

// Read waits for the next light and proximity conversion and returns it.
func (l *LTR559) Read() (LightReading, error) {
	if err := l.waitForData(time.Second); err != nil {
		return LightReading{}, err
	}

	var als [4]byte
	if err := l.readReg(regALSData, als[:]); err != nil {
		return LightReading{}, fmt.Errorf("ltr559 als read: %w", err)
	}
	ch1 := uint16(als[0]) | uint16(als[1])<<8
	ch0 := uint16(als[2]) | uint16(als[3])<<8

	var ps [2]byte
	if err := l.readReg(regPSData, ps[:]); err != nil {
		return LightReading{}, fmt.Errorf("ltr559 ps read: %w", err)
	}

	reading := LightReading{
		Lux:       luxFromChannels(ch0, ch1, l.gain, l.integrationMS),
		Proximity: float64(psCounts(ps[0], ps[1])),
	}

	l.logger.Debug("LTR559 read", "lux", reading.Lux, "proximity", reading.Proximity, "ch0", ch0, "ch1", ch1)

	return reading, nil
}

func (l *LTR559) reset() error {
	if err := l.writeReg(regALSControl, alsControlReset); err != nil {
		return fmt.Errorf("ltr559 reset: %w", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		var ctl [1]byte
		if err := l.readReg(regALSControl, ctl[:]); err != nil {
			return fmt.Errorf("ltr559 reset poll: %w", err)
		}
		if ctl[0]&alsControlReset == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("ltr559 stuck in reset")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// waitForData polls the status register until both the ALS and PS have a
// fresh conversion. The ALS needs one 50ms integration after power-up, the
// PS one 100ms repeat period.
func (l *LTR559) waitForData(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		var status [1]byte
		if err := l.readReg(regALSPSStatus, status[:]); err != nil {
			return fmt.Errorf("ltr559 status read: %w", err)
		}
		if status[0]&statusALSData != 0 && status[0]&statusPSData != 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("ltr559 sensor data not ready after %s", timeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (l *LTR559) readReg(reg byte, buf []byte) error {
	return l.dev.Tx([]byte{reg}, buf)
}

func (l *LTR559) writeReg(reg, value byte) error {
	return l.dev.Tx([]byte{reg, value}, nil)
}

// luxFromChannels converts the two ALS channel counts to lux. The
// coefficient band is picked by the infrared ratio; an all-dark reading
// falls through to the last band and yields 0.
func luxFromChannels(ch0, ch1 uint16, gain, integrationMS float64) float64 {
	als0 := float64(ch0)
	als1 := float64(ch1)

	ratio := 101.0
	if als0+als1 > 0 {
		ratio = als1 * 100 / (als1 + als0)
	}

	var idx int
	switch {
	case ratio < 45:
		idx = 0
	case ratio < 64:
		idx = 1
	case ratio < 85:
		idx = 2
	default:
		idx = 3
	}

	lux := als0*ltr559Ch0Coeff[idx] - als1*ltr559Ch1Coeff[idx]
	lux /= integrationMS / 100.0
	lux /= gain
	lux /= 10000.0

	return lux
}

// psCounts assembles the 11-bit proximity value from its two data bytes.
func psCounts(lo, hi byte) uint16 {
	return uint16(lo) | uint16(hi&0x07)<<8
}
