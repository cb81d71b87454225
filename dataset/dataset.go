// Package dataset owns the building sensor table. A Dataset is loaded once,
// never mutated afterwards, and handed to the metric tools as an explicit
// handle; date filters return cheap views over the same backing slice.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/va6996/ecochat/log"
)

// ErrDatasetUnavailable is returned when the backing file is missing or unparsable.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

// Sensor column names.
const (
	CO2         = "co2"
	Temperature = "temperature"
	Humidity    = "humidity"
	Light       = "light"
	PIR         = "pir"
)

// SensorColumns lists the numeric sensor columns in display order.
var SensorColumns = []string{CO2, Temperature, Humidity, Light, PIR}

// Value is an optional reading. Absent values are skipped by aggregates.
type Value struct {
	V     float64
	Valid bool
}

// Some returns a present value.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// Reading is one row of the sensor table.
type Reading struct {
	Timestamp   time.Time
	CO2         Value
	Temperature Value
	Humidity    Value
	Light       Value
	PIR         Value
	BuildingID  int
	// Extra holds numeric columns outside the fixed sensor set, keyed by
	// lower-cased header name.
	Extra map[string]Value
}

// Value returns the named column for this row.
func (r Reading) Value(column string) Value {
	switch column {
	case CO2:
		return r.CO2
	case Temperature:
		return r.Temperature
	case Humidity:
		return r.Humidity
	case Light:
		return r.Light
	case PIR:
		return r.PIR
	}
	return r.Extra[column]
}

// Dataset is an immutable, timestamp-ordered snapshot of sensor readings.
type Dataset struct {
	readings []Reading
	extra    []string
}

// New builds a dataset from in-memory readings. The slice is copied and
// stably sorted by timestamp.
func New(readings []Reading, extraColumns ...string) *Dataset {
	rows := make([]Reading, len(readings))
	copy(rows, readings)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
	return &Dataset{readings: rows, extra: extraColumns}
}

// Empty is the sentinel handed out when no data could be loaded.
func Empty() *Dataset {
	return &Dataset{}
}

// Len returns the number of readings.
func (d *Dataset) Len() int {
	return len(d.readings)
}

// Columns returns the numeric columns present in the dataset.
func (d *Dataset) Columns() []string {
	cols := append([]string{}, SensorColumns...)
	return append(cols, d.extra...)
}

// EnergyColumns returns the extra columns whose name mentions energy or power.
func (d *Dataset) EnergyColumns() []string {
	var cols []string
	for _, c := range d.extra {
		if strings.Contains(c, "energy") || strings.Contains(c, "power") {
			cols = append(cols, c)
		}
	}
	return cols
}

// Open loads the dataset at path and falls back to the Empty sentinel on
// failure, so callers only ever see "no data".
func Open(ctx context.Context, path string) *Dataset {
	ds, err := Load(path)
	if err != nil {
		log.Errorf(ctx, "Loading dataset %s: %v", path, err)
		return Empty()
	}
	log.Infof(ctx, "Loaded %d records from %s", ds.Len(), path)
	return ds
}

// Load reads the CSV at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatasetUnavailable, path, err)
	}
	return ds, nil
}

// Parse decodes a sensor CSV. The time column may be named timestamp or
// datetime; every other numeric column is kept.
func Parse(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	var extra []string
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		index[name] = i
		switch name {
		case "timestamp", "datetime", "building_id", CO2, Temperature, Humidity, Light, PIR:
		default:
			extra = append(extra, name)
		}
	}

	timeCol, ok := index["timestamp"]
	if !ok {
		if timeCol, ok = index["datetime"]; !ok {
			return nil, errors.New("no timestamp or datetime column")
		}
	}

	var readings []Reading
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := ParseTime(record[timeCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		reading := Reading{
			Timestamp:   ts,
			CO2:         field(record, index, CO2),
			Temperature: field(record, index, Temperature),
			Humidity:    field(record, index, Humidity),
			Light:       field(record, index, Light),
			PIR:         field(record, index, PIR),
		}
		if id := field(record, index, "building_id"); id.Valid {
			reading.BuildingID = int(id.V)
		}
		if len(extra) > 0 {
			reading.Extra = make(map[string]Value, len(extra))
			for _, name := range extra {
				reading.Extra[name] = field(record, index, name)
			}
		}
		readings = append(readings, reading)
	}

	return New(readings, numericColumns(readings, extra)...), nil
}

// numericColumns keeps the extra columns with at least one numeric value and
// drops the others from every reading.
func numericColumns(readings []Reading, extra []string) []string {
	var keep []string
	for _, name := range extra {
		numeric := false
		for _, r := range readings {
			if r.Extra[name].Valid {
				numeric = true
				break
			}
		}
		if numeric {
			keep = append(keep, name)
			continue
		}
		for _, r := range readings {
			delete(r.Extra, name)
		}
	}
	return keep
}

func field(record []string, index map[string]int, name string) Value {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return Value{}
	}
	raw := strings.TrimSpace(record[i])
	if raw == "" || strings.EqualFold(raw, "nan") {
		return Value{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Value{}
	}
	return Some(v)
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	dateLayout,
}

const dateLayout = "2006-01-02"

// ParseTime accepts the timestamp layouts seen in sensor exports. Values
// without a zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
