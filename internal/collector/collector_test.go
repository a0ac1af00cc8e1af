package collector

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s-boardman/enviroplus-datalogger/internal/sensors"
)

type fakeClimate struct {
	reading sensors.ClimateReading
	err     error
}

func (f fakeClimate) Read() (sensors.ClimateReading, error) { return f.reading, f.err }

type fakeLight struct {
	reading sensors.LightReading
	err     error
}

func (f fakeLight) Read() (sensors.LightReading, error) { return f.reading, f.err }

type fakeParticulate struct {
	reading sensors.ParticulateReading
	err     error
}

func (f fakeParticulate) Read() (sensors.ParticulateReading, error) { return f.reading, f.err }

type fakeGas struct {
	reading sensors.GasReading
	err     error
}

func (f fakeGas) ReadAll() (sensors.GasReading, error) { return f.reading, f.err }

func testLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

func workingSensors() (fakeClimate, fakeLight, fakeParticulate, fakeGas) {
	climate := fakeClimate{reading: sensors.ClimateReading{Temperature: 21.5, Pressure: 1013.2, Humidity: 45.0}}
	light := fakeLight{reading: sensors.LightReading{Lux: 120.0, Proximity: 0.0}}
	particulate := fakeParticulate{reading: sensors.ParticulateReading{
		Words: [13]uint16{10, 15, 20, 9, 14, 19, 0, 0, 0, 0, 0, 0, 0},
	}}
	gas := fakeGas{reading: sensors.GasReading{Oxidising: 21000, Reducing: 450000, NH3: 120000}}
	return climate, light, particulate, gas
}

func TestCollector_Collect_FullSweep(t *testing.T) {
	climate, light, particulate, gas := workingSensors()
	logger, _ := testLogger()

	m, err := New(climate, light, particulate, gas, logger).Collect()
	require.NoError(t, err)

	assert.Equal(t, 21.5, m.Temperature)
	assert.Equal(t, 1013.2, m.Pressure)
	assert.Equal(t, 45.0, m.Humidity)
	assert.Equal(t, 120.0, m.LightLux)
	assert.Equal(t, 0.0, m.LightProximity)
	assert.Equal(t, 21000.0, m.Oxidising)
	assert.Equal(t, 450000.0, m.Reducing)
	assert.Equal(t, 120000.0, m.NH3)

	require.True(t, m.HasParticulates())
	assert.Equal(t, 10.0, *m.PM1Standard)
	assert.Equal(t, 15.0, *m.PM25Standard)
	assert.Equal(t, 20.0, *m.PM10Standard)
	assert.Equal(t, 9.0, *m.PM1Env)
	assert.Equal(t, 14.0, *m.PM25Env)

	// The collector leaves stamping to the caller.
	assert.True(t, m.Timestamp.IsZero())
}

func TestCollector_Collect_EnvironmentalPM10IsMaxBin(t *testing.T) {
	climate, light, particulate, gas := workingSensors()
	logger, _ := testLogger()

	m, err := New(climate, light, particulate, gas, logger).Collect()
	require.NoError(t, err)

	// Word 5 is the max-bin environmental aggregate, distinct from the
	// standard-basis PM10 in word 2.
	require.NotNil(t, m.PM10Env)
	assert.Equal(t, 19.0, *m.PM10Env)
	assert.NotEqual(t, *m.PM10Standard, *m.PM10Env)
}

func TestCollector_Collect_ParticulateTimeoutLeavesFieldsUnset(t *testing.T) {
	climate, light, _, gas := workingSensors()
	particulate := fakeParticulate{err: fmt.Errorf("reading frame: %w", sensors.ErrReadTimeout)}
	logger, logs := testLogger()

	m, err := New(climate, light, particulate, gas, logger).Collect()
	require.NoError(t, err)

	assert.False(t, m.HasParticulates())
	assert.Nil(t, m.PM1Standard)
	assert.Nil(t, m.PM25Standard)
	assert.Nil(t, m.PM10Standard)
	assert.Nil(t, m.PM1Env)
	assert.Nil(t, m.PM25Env)
	assert.Nil(t, m.PM10Env)

	// The sweep carries on past the dead sensor.
	assert.Equal(t, 21.5, m.Temperature)
	assert.Equal(t, 21000.0, m.Oxidising)

	assert.Contains(t, logs.String(), "Particulate sensor read timeout")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestCollector_Collect_CorruptParticulateDataIsFatal(t *testing.T) {
	climate, light, _, gas := workingSensors()
	particulate := fakeParticulate{err: sensors.ErrChecksum}
	logger, _ := testLogger()

	m, err := New(climate, light, particulate, gas, logger).Collect()
	require.Error(t, err)
	assert.ErrorIs(t, err, sensors.ErrChecksum)
	assert.Nil(t, m)
}

func TestCollector_Collect_SensorFailuresAreFatal(t *testing.T) {
	sensorErr := errors.New("i2c transaction failed")

	tests := []struct {
		name    string
		mutate  func(*fakeClimate, *fakeLight, *fakeGas)
		wantMsg string
	}{
		{
			"climate failure",
			func(c *fakeClimate, l *fakeLight, g *fakeGas) { c.err = sensorErr },
			"climate read",
		},
		{
			"light failure",
			func(c *fakeClimate, l *fakeLight, g *fakeGas) { l.err = sensorErr },
			"light read",
		},
		{
			"gas failure",
			func(c *fakeClimate, l *fakeLight, g *fakeGas) { g.err = sensorErr },
			"gas read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			climate, light, particulate, gas := workingSensors()
			tt.mutate(&climate, &light, &gas)
			logger, _ := testLogger()

			m, err := New(climate, light, particulate, gas, logger).Collect()
			require.Error(t, err)
			assert.ErrorIs(t, err, sensorErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Nil(t, m)
		})
	}
}
