package timeseries

import (
	"math"
	"testing"
	"time"
)

func TestMissingPositions(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []int
	}{
		{"none", []float64{1, 2, 3}, []int{}},
		{"middle", []float64{1, math.NaN(), 3}, []int{1}},
		{"edges", []float64{math.NaN(), 2, math.NaN()}, []int{0, 2}},
		{"empty", []float64{}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.values)
			got := s.MissingPositions().List()
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, got)
				}
			}
			if s.MissingCount() != len(tt.expected) {
				t.Errorf("Expected missing count %d, got %d", len(tt.expected), s.MissingCount())
			}
		})
	}
}

func TestCopyIsDeep(t *testing.T) {
	s := New([]float64{1, 2, 3})
	c := s.Copy()
	c.Values[0] = 100

	if s.Values[0] != 1 {
		t.Errorf("Copy shares storage with the original")
	}
}

func TestObserved(t *testing.T) {
	s := New([]float64{math.NaN(), 2, math.NaN(), 4})
	positions, values := s.Observed()

	if len(positions) != 2 || positions[0] != 1 || positions[1] != 3 {
		t.Errorf("Expected positions [1 3], got %v", positions)
	}
	if len(values) != 2 || values[0] != 2 || values[1] != 4 {
		t.Errorf("Expected values [2 4], got %v", values)
	}
}

func TestDayOffsets(t *testing.T) {
	positional := New([]float64{1, 2, 3})
	for i, v := range positional.DayOffsets() {
		if v != float64(i) {
			t.Errorf("Expected offset %d, got %f", i, v)
		}
	}

	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	dated, err := NewWithTimestamps([]time.Time{base, base.Add(48 * time.Hour), base.Add(72 * time.Hour)}, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{0, 2, 3}
	for i, v := range dated.DayOffsets() {
		if math.Abs(v-expected[i]) > 1e-12 {
			t.Errorf("Expected offset %f at %d, got %f", expected[i], i, v)
		}
	}
}

func TestNewWithTimestampsLengthMismatch(t *testing.T) {
	if _, err := NewWithTimestamps([]time.Time{time.Now()}, []float64{1, 2}); err == nil {
		t.Errorf("Expected error for mismatched lengths")
	}
}

func TestTimeSeriesRoundTrip(t *testing.T) {
	base := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	s, _ := NewWithTimestamps([]time.Time{base, base.Add(time.Hour)}, []float64{1.5, math.NaN()})
	s.Name = "cpc"

	back := FromTimeSeries(s.ToTimeSeries())
	if back.Name != "cpc" {
		t.Errorf("Expected name cpc, got %q", back.Name)
	}
	if back.Len() != 2 || back.Values[0] != 1.5 || !back.IsMissing(1) {
		t.Errorf("Unexpected values %v", back.Values)
	}
	if !back.Timestamps[1].Equal(base.Add(time.Hour)) {
		t.Errorf("Unexpected timestamp %v", back.Timestamps[1])
	}
}
