package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidDate marks a date bound that could not be parsed.
var ErrInvalidDate = errors.New("invalid date")

// View is a read-only window over a Dataset. The zero View is empty.
type View struct {
	readings []Reading
	ds       *Dataset
}

// All returns a view over every reading.
func (d *Dataset) All() View {
	return View{readings: d.readings, ds: d}
}

// Filter returns readings with start <= timestamp <= end. A nil bound is
// unbounded on that side.
func (d *Dataset) Filter(start, end *time.Time) View {
	lo, hi := 0, len(d.readings)
	if start != nil {
		lo = sort.Search(len(d.readings), func(i int) bool {
			return !d.readings[i].Timestamp.Before(*start)
		})
	}
	if end != nil {
		hi = sort.Search(len(d.readings), func(i int) bool {
			return d.readings[i].Timestamp.After(*end)
		})
	}
	if lo > hi {
		lo = hi
	}
	return View{readings: d.readings[lo:hi:hi], ds: d}
}

// FilterDates is Filter over string bounds. Empty strings are unbounded. An
// end given as a bare YYYY-MM-DD covers that whole day.
func (d *Dataset) FilterDates(start, end string) (View, error) {
	var from, to *time.Time
	if s := strings.TrimSpace(start); s != "" {
		t, err := ParseTime(s)
		if err != nil {
			return View{}, fmt.Errorf("%w: start_date %q", ErrInvalidDate, start)
		}
		from = &t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, err := ParseTime(s)
		if err != nil {
			return View{}, fmt.Errorf("%w: end_date %q", ErrInvalidDate, end)
		}
		if _, err := time.Parse(dateLayout, s); err == nil {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = &t
	}
	return d.Filter(from, to), nil
}

// Len returns the number of readings in the view.
func (v View) Len() int { return len(v.readings) }

// Empty reports whether the view holds no readings.
func (v View) Empty() bool { return len(v.readings) == 0 }

// Readings exposes the underlying rows. Callers must not modify them.
func (v View) Readings() []Reading { return v.readings }

// Span returns the first and last timestamps.
func (v View) Span() (first, last time.Time, ok bool) {
	if len(v.readings) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return v.readings[0].Timestamp, v.readings[len(v.readings)-1].Timestamp, true
}

// Column returns the present values of the named column.
func (v View) Column(name string) []float64 {
	out := make([]float64, 0, len(v.readings))
	for _, r := range v.readings {
		if val := r.Value(name); val.Valid {
			out = append(out, val.V)
		}
	}
	return out
}

// Columns returns the numeric columns of the owning dataset.
func (v View) Columns() []string {
	if v.ds == nil {
		return append([]string{}, SensorColumns...)
	}
	return v.ds.Columns()
}

// EnergyColumns returns the energy or power columns of the owning dataset.
func (v View) EnergyColumns() []string {
	if v.ds == nil {
		return nil
	}
	return v.ds.EnergyColumns()
}

// BuildingID returns the building of the first reading.
func (v View) BuildingID() (int, bool) {
	if len(v.readings) == 0 {
		return 0, false
	}
	return v.readings[0].BuildingID, true
}
