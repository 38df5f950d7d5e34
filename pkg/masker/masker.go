// Package masker hides randomly chosen observed values of a series so that imputation
// strategies can be scored against the values they were not allowed to see.
package masker

import (
	"errors"
	"fmt"
	"math/rand"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/gocrane/imputebench/pkg/timeseries"
)

// Sampler selects how mask positions are drawn.
type Sampler string

const (
	// BatchSampler draws every position at once from the explicit eligible set.
	BatchSampler Sampler = "batch"
	// SequentialSampler draws one candidate at a time and rejects duplicates and
	// already-missing positions. It never materialises the eligible set, which suits
	// very long series.
	SequentialSampler Sampler = "sequential"
)

var (
	ErrInvalidFraction   = errors.New("fraction must be in [0, 1)")
	ErrNotEnoughEligible = errors.New("not enough observed values to mask")
	ErrSampleCollision   = errors.New("mask draw produced a duplicate position")
	ErrUnknownSampler    = errors.New("unknown sampler")
)

// Masker draws mask positions with the configured sampler.
type Masker struct {
	Sampler Sampler
}

// New returns a masker for the given sampler.
func New(sampler Sampler) (*Masker, error) {
	switch sampler {
	case BatchSampler, SequentialSampler:
		return &Masker{Sampler: sampler}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownSampler, sampler)
	}
}

// Size returns how many positions a mask of fraction over n values holds.
func Size(n int, fraction float64) int {
	return int(float64(n) * fraction)
}

// Mask returns a copy of series with floor(len*fraction) observed positions set to
// missing, together with those positions. Already missing positions are never drawn.
func (m *Masker) Mask(rng *rand.Rand, series *timeseries.Series, fraction float64) (*timeseries.Series, sets.Int, error) {
	if fraction < 0 || fraction >= 1 {
		return nil, nil, fmt.Errorf("%w, got %v", ErrInvalidFraction, fraction)
	}

	k := Size(series.Len(), fraction)
	existing := series.MissingPositions()
	if eligible := series.Len() - existing.Len(); k > eligible {
		return nil, nil, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughEligible, k, eligible)
	}

	var positions sets.Int
	var err error
	switch m.Sampler {
	case SequentialSampler:
		positions = drawSequential(rng, series.Len(), existing, k)
	case BatchSampler:
		positions, err = drawBatch(rng, series.Len(), existing, k)
	default:
		err = fmt.Errorf("%w %q", ErrUnknownSampler, m.Sampler)
	}
	if err != nil {
		return nil, nil, err
	}

	return series.WithMissing(positions), positions, nil
}

// drawBatch samples k positions without replacement from the eligible list using a
// partial Fisher-Yates shuffle.
func drawBatch(rng *rand.Rand, n int, existing sets.Int, k int) (sets.Int, error) {
	eligible := make([]int, 0, n-existing.Len())
	for i := 0; i < n; i++ {
		if !existing.Has(i) {
			eligible = append(eligible, i)
		}
	}

	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}

	drawn := sets.NewInt(eligible[:k]...)
	if drawn.Len() != k {
		return nil, ErrSampleCollision
	}
	return drawn, nil
}

// drawSequential samples positions one at a time over [0, n), rejecting duplicates
// and existing missing positions. The caller guarantees k <= eligible count.
func drawSequential(rng *rand.Rand, n int, existing sets.Int, k int) sets.Int {
	drawn := sets.NewInt()
	for drawn.Len() < k {
		ix := rng.Intn(n)
		if existing.Has(ix) || drawn.Has(ix) {
			continue
		}
		drawn.Insert(ix)
	}
	return drawn
}
