// Package stats provides summary statistics over a series of values.
package stats

import (
	"errors"
	"slices"
)

// ErrEmpty is returned when a summary is requested for an empty series.
var ErrEmpty = errors.New("empty series")

// Summary represents the aggregate view of a series.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
}

// Summarize computes the summary for the specified values. The input slice
// is left untouched.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmpty
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	s := Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: median(sorted),
		Mean:   sum / float64(len(sorted)),
	}

	return s, nil
}

// median expects a sorted, non-empty slice. An even length series takes
// the mean of the two middle values.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}
