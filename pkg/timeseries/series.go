// Package timeseries provides the univariate series the benchmark operates on.
package timeseries

import (
	"errors"
	"math"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Series represents a univariate time series. A NaN value marks a missing observation.
// Timestamps are optional; when present they must line up with Values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a positional series from values. The slice is not copied.
func New(values []float64) *Series {
	return &Series{Values: values}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Missing returns the value used to mark a missing observation.
func Missing() float64 {
	return math.NaN()
}

// IsMissingValue reports whether v marks a missing observation.
func IsMissingValue(v float64) bool {
	return math.IsNaN(v)
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// HasTimestamps reports whether the series carries a timestamp per value.
func (s *Series) HasTimestamps() bool {
	return len(s.Timestamps) > 0 && len(s.Timestamps) == len(s.Values)
}

// IsMissing reports whether position i is missing.
func (s *Series) IsMissing(i int) bool {
	return math.IsNaN(s.Values[i])
}

// MissingPositions returns the set of missing positions.
func (s *Series) MissingPositions() sets.Int {
	missing := sets.NewInt()
	for i, v := range s.Values {
		if math.IsNaN(v) {
			missing.Insert(i)
		}
	}
	return missing
}

// MissingCount returns the number of missing positions.
func (s *Series) MissingCount() int {
	n := 0
	for _, v := range s.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Observed returns the positions and values of all non-missing observations, in order.
func (s *Series) Observed() ([]int, []float64) {
	positions := make([]int, 0, len(s.Values))
	values := make([]float64, 0, len(s.Values))
	for i, v := range s.Values {
		if !math.IsNaN(v) {
			positions = append(positions, i)
			values = append(values, v)
		}
	}
	return positions, values
}

// ObservedValues returns the non-missing values in order.
func (s *Series) ObservedValues() []float64 {
	_, values := s.Observed()
	return values
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	var timestamps []time.Time
	if s.Timestamps != nil {
		timestamps = make([]time.Time, len(s.Timestamps))
		copy(timestamps, s.Timestamps)
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// WithMissing returns a copy of the series with the given positions set to missing.
// Positions outside the series are ignored.
func (s *Series) WithMissing(positions sets.Int) *Series {
	out := s.Copy()
	for p := range positions {
		if p >= 0 && p < len(out.Values) {
			out.Values[p] = math.NaN()
		}
	}
	return out
}

// DayOffsets returns the elapsed time of every position in days. Series without
// timestamps are read as one day per position, so offsets equal the positional index.
func (s *Series) DayOffsets() []float64 {
	offsets := make([]float64, len(s.Values))
	if !s.HasTimestamps() {
		for i := range offsets {
			offsets[i] = float64(i)
		}
		return offsets
	}
	base := s.Timestamps[0]
	for i, ts := range s.Timestamps {
		offsets[i] = ts.Sub(base).Hours() / 24
	}
	return offsets
}
