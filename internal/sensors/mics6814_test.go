package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementResistance(t *testing.T) {
	tests := []struct {
		name  string
		volts float64
		want  float64
	}{
		{"midpoint of divider", 1.65, 56000},
		{"zero volts", 0, 0},
		{"clean air oxidising range", 0.33, 6222.222222},
		{"saturated at rail", 3.3, 0},
		{"above rail", 3.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, elementResistance(tt.volts), 1e-3)
		})
	}
}
