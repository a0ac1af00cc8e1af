package models

import (
	"fmt"
	"strconv"
	"time"
)

// Measurement is one full sweep of the Enviro+ board: every channel the
// four sensors expose, captured at a single instant.
//
// The six particulate fields are pointers because the PMS5003 is the only
// sensor allowed to fail a run; nil persists as SQL NULL. They are always
// set or unset together.
//
// Field order matches the persisted column order. Analysis tooling reads
// the table positionally, so new columns go at the end.
type Measurement struct {
	Timestamp      time.Time `gorm:"column:timestamp"`
	Temperature    float64   `gorm:"column:temperature"`     // degrees Celsius
	Pressure       float64   `gorm:"column:pressure"`        // hectopascals
	Humidity       float64   `gorm:"column:humidity"`        // percent relative humidity
	LightLux       float64   `gorm:"column:light_lux"`       // lux
	LightProximity float64   `gorm:"column:light_proximity"` // raw counts, 0 when nothing is near
	PM1Standard    *float64  `gorm:"column:pm1_0_standard"`  // ug/m3, CF=1
	PM25Standard   *float64  `gorm:"column:pm2_5_standard"`
	PM10Standard   *float64  `gorm:"column:pm10_standard"`
	PM1Env         *float64  `gorm:"column:pm1_0_env"` // ug/m3, atmospheric environment
	PM25Env        *float64  `gorm:"column:pm2_5_env"`
	PM10Env        *float64  `gorm:"column:pm10_env"`
	Oxidising      float64   `gorm:"column:oxidising"` // Ohms
	Reducing       float64   `gorm:"column:reducing"`  // Ohms
	NH3            float64   `gorm:"column:nh3"`       // Ohms
}

func (Measurement) TableName() string {
	return "measurements"
}

// HasParticulates reports whether the particulate sensor produced data for
// this sweep.
func (m *Measurement) HasParticulates() bool {
	return m.PM1Standard != nil
}

func (m *Measurement) String() string {
	pm := func(v *float64) string {
		if v == nil {
			return "null"
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}

	return fmt.Sprintf(
		"%.2fC %.2fhPa %.2f%%RH lux=%.2f prox=%.0f pm1.0=%s pm2.5=%s pm10=%s pm1.0env=%s pm2.5env=%s pm10env=%s ox=%.1fOhm red=%.1fOhm nh3=%.1fOhm",
		m.Temperature,
		m.Pressure,
		m.Humidity,
		m.LightLux,
		m.LightProximity,
		pm(m.PM1Standard),
		pm(m.PM25Standard),
		pm(m.PM10Standard),
		pm(m.PM1Env),
		pm(m.PM25Env),
		pm(m.PM10Env),
		m.Oxidising,
		m.Reducing,
		m.NH3,
	)
}
