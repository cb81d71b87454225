package building

import (
	"math"
	"sort"
	"time"

	"github.com/va6996/ecochat/dataset"
)

// Period is the covered timestamp span of an analysis.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func periodOf(v dataset.View) *Period {
	first, last, ok := v.Span()
	if !ok {
		return nil
	}
	return &Period{Start: first, End: last}
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func ptr[T any](v T) *T { return &v }

// roundedPtr returns nil when ok is false so JSON carries an explicit null.
func roundedPtr(x float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return ptr(round(x, 2))
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round(float64(count)/float64(total)*100, 1)
}

func mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs)), true
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func minMax(xs []float64) (lo, hi float64, ok bool) {
	if len(xs) == 0 {
		return 0, 0, false
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi, true
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// stddev is the sample standard deviation; zero for fewer than two values.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m, _ := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func countIf(xs []float64, pred func(float64) bool) int {
	n := 0
	for _, x := range xs {
		if pred(x) {
			n++
		}
	}
	return n
}
