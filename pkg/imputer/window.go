package imputer

import (
	"fmt"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/gocrane/imputebench/pkg/timeseries"
)

// Moving window statistics.
const (
	StatisticMean   = "mean"
	StatisticMedian = "median"
)

var _ Executor = &MovingWindow{}

// MovingWindow splits the series into contiguous chunks of exactly wsize values and
// replaces each missing value with a statistic of the observed values in a centred
// window inside its chunk. Trailing values that do not fill a whole chunk are left as
// they are and are not scored.
type MovingWindow struct {
	Statistic string
	aggregate func([]float64) (float64, error)
}

func NewMovingWindow(statistic string) (*MovingWindow, error) {
	w := &MovingWindow{Statistic: statistic}
	switch statistic {
	case StatisticMean:
		w.aggregate = func(v []float64) (float64, error) { return stat.Mean(v, nil), nil }
	case StatisticMedian:
		w.aggregate = func(v []float64) (float64, error) { return stats.Median(v) }
	default:
		return nil, fmt.Errorf("unsupported window statistic %q", statistic)
	}
	return w, nil
}

func (w *MovingWindow) Family() string {
	return FamilyMovingWindow
}

func (w *MovingWindow) Execute(in *Input, param string) (*Output, error) {
	wsize, err := strconv.Atoi(param)
	if err != nil {
		return nil, wrapParameterError(FamilyMovingWindow, param, err)
	}
	if wsize < 1 || wsize%2 == 0 {
		return nil, parameterError(FamilyMovingWindow, param, "window size must be a positive odd number")
	}

	n := in.Masked.Len()
	chunks := n / wsize
	if chunks == 0 {
		return nil, &EmptyWindowError{Param: param, Reason: fmt.Sprintf("series of length %d is shorter than the window", n)}
	}
	prefix := chunks * wsize

	imputed := in.Masked.Copy()
	for c := 0; c < chunks; c++ {
		if err := w.smooth(imputed.Values[c*wsize:(c+1)*wsize], wsize/2); err != nil {
			return nil, wrapParameterError(FamilyMovingWindow, param, err)
		}
	}

	scored := in.Mask
	if prefix < n {
		covered := sets.NewInt()
		for i := 0; i < prefix; i++ {
			covered.Insert(i)
		}
		scored = in.Mask.Intersection(covered)
	}
	for p := range scored {
		if imputed.IsMissing(p) {
			return nil, &EmptyWindowError{Param: param, Reason: fmt.Sprintf("no observed value around position %d", p)}
		}
	}

	return &Output{Imputed: imputed, Scored: scored}, nil
}

// smooth fills chunk in place. Values imputed earlier in a sweep feed later windows;
// sweeps repeat until every value is filled or a sweep makes no progress.
func (w *MovingWindow) smooth(chunk []float64, half int) error {
	for {
		progress, remaining := false, false
		for j, v := range chunk {
			if !timeseries.IsMissingValue(v) {
				continue
			}
			lo, hi := j-half, j+half+1
			if lo < 0 {
				lo = 0
			}
			if hi > len(chunk) {
				hi = len(chunk)
			}

			var window []float64
			for _, x := range chunk[lo:hi] {
				if !timeseries.IsMissingValue(x) {
					window = append(window, x)
				}
			}
			if len(window) == 0 {
				remaining = true
				continue
			}

			value, err := w.aggregate(window)
			if err != nil {
				return err
			}
			chunk[j] = value
			progress = true
		}
		if !remaining || !progress {
			return nil
		}
	}
}
