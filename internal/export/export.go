// Package export renders stored measurements as CSV for external analysis
// tooling.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/s-boardman/enviroplus-datalogger/internal/models"
)

// columns is the CSV header, in persisted column order.
var columns = []string{
	"timestamp",
	"temperature",
	"pressure",
	"humidity",
	"light_lux",
	"light_proximity",
	"pm1_0_standard",
	"pm2_5_standard",
	"pm10_standard",
	"pm1_0_env",
	"pm2_5_env",
	"pm10_env",
	"oxidising",
	"reducing",
	"nh3",
}

// Writer encodes measurements as CSV rows, optionally gzip-compressed.
// Close must be called to flush; the underlying writer stays open.
type Writer struct {
	csv *csv.Writer
	gz  *gzip.Writer
}

// NewWriter writes the header row immediately so even an empty export is a
// well-formed CSV file.
func NewWriter(w io.Writer, compress bool) (*Writer, error) {
	var gz *gzip.Writer
	target := w
	if compress {
		gz = gzip.NewWriter(w)
		target = gz
	}

	cw := csv.NewWriter(target)
	if err := cw.Write(columns); err != nil {
		return nil, err
	}

	return &Writer{csv: cw, gz: gz}, nil
}

func (w *Writer) Write(m models.Measurement) error {
	return w.csv.Write(row(m))
}

func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	if w.gz != nil {
		return w.gz.Close()
	}
	return nil
}

func row(m models.Measurement) []string {
	return []string{
		m.Timestamp.Format(time.RFC3339),
		formatFloat(m.Temperature),
		formatFloat(m.Pressure),
		formatFloat(m.Humidity),
		formatFloat(m.LightLux),
		formatFloat(m.LightProximity),
		formatNullable(m.PM1Standard),
		formatNullable(m.PM25Standard),
		formatNullable(m.PM10Standard),
		formatNullable(m.PM1Env),
		formatNullable(m.PM25Env),
		formatNullable(m.PM10Env),
		formatFloat(m.Oxidising),
		formatFloat(m.Reducing),
		formatFloat(m.NH3),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatNullable renders a missing particulate value as an empty cell, the
// CSV convention closest to SQL NULL.
func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
