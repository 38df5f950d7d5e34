package imputer

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/gocrane/imputebench/pkg/timeseries"
)

var nan = math.NaN()

// newInput masks positions of values and keeps the unmasked values as the original.
func newInput(values []float64, mask ...int) *Input {
	original := timeseries.New(values)
	positions := sets.NewInt(mask...)
	return &Input{Original: original, Masked: original.WithMissing(positions), Mask: positions}
}

func requireParameterError(t *testing.T, err error) {
	t.Helper()
	var perr *ParameterError
	require.True(t, errors.As(err, &perr), "want ParameterError, got %v", err)
	assert.True(t, IsSoft(err))
}

func TestSimpleImputer(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		mask     []int
		param    string
		expected float64
	}{
		{"mean", []float64{1, 2, nan, 4, 5, 6, 7, 8, nan, 10}, []int{0, 9}, StrategyMean, 32.0 / 6},
		{"median", []float64{1, 3, nan, 3, 10}, nil, StrategyMedian, 3},
		{"most frequent", []float64{1, 3, nan, 3, 10}, nil, StrategyMostFrequent, 3},
		{"most frequent all unique", []float64{4, nan, 2, 9}, nil, StrategyMostFrequent, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newInput(tt.values, tt.mask...)
			out, err := NewSimpleImputer().Execute(in, tt.param)
			require.NoError(t, err)

			assert.Zero(t, out.Imputed.MissingCount())
			for p := range in.Masked.MissingPositions() {
				assert.InDelta(t, tt.expected, out.Imputed.Values[p], 1e-12)
			}
			assert.Equal(t, in.Mask, out.Scored)
		})
	}
}

func TestSimpleImputerErrors(t *testing.T) {
	_, err := NewSimpleImputer().Execute(newInput([]float64{1, nan}), "constant")
	requireParameterError(t, err)

	_, err = NewSimpleImputer().Execute(newInput([]float64{nan, nan}), StrategyMean)
	requireParameterError(t, err)
}

func TestExecutorsDoNotMutateInput(t *testing.T) {
	r, err := NewDefaultRegistry(DefaultOptions())
	require.NoError(t, err)

	values := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9, 3}
	for _, d := range DefaultGrid().Descriptors() {
		in := newInput(values, 2, 7, 11)
		before := append([]float64(nil), in.Masked.Values...)

		executor, err := r.Resolve(d.Family)
		require.NoError(t, err)
		_, _ = executor.Execute(in, d.Param)

		for i := range before {
			if math.IsNaN(before[i]) {
				assert.True(t, math.IsNaN(in.Masked.Values[i]), "%s mutated position %d", d, i)
			} else {
				assert.Equal(t, before[i], in.Masked.Values[i], "%s mutated position %d", d, i)
			}
		}
	}
}

func TestFullDomainExecutorsFillMaskedPositions(t *testing.T) {
	r, err := NewDefaultRegistry(DefaultOptions())
	require.NoError(t, err)

	values := make([]float64, 40)
	for i := range values {
		values[i] = 10 + 3*math.Sin(float64(i)/4)
	}
	values[0], values[17], values[39] = nan, nan, nan

	grid := DefaultGrid().Only(FamilySimple, FamilyKNN, FamilyInterpolate, FamilyInterpolateWithOrder)
	for _, d := range grid.Descriptors() {
		t.Run(d.String(), func(t *testing.T) {
			in := newInput(values, 1, 5, 6, 20, 38)
			executor, err := r.Resolve(d.Family)
			require.NoError(t, err)

			out, err := executor.Execute(in, d.Param)
			require.NoError(t, err)
			require.Equal(t, len(values), out.Imputed.Len())
			for p := range in.Mask {
				assert.False(t, out.Imputed.IsMissing(p), "position %d left missing", p)
			}
			assert.Zero(t, out.Imputed.MissingCount())
		})
	}
}

func TestInterpolateReproducesLines(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = 2*float64(i) + 1
	}
	mask := []int{2, 3, 7, 9}

	kinds := []string{KindTime, KindLinear, KindIndex, KindSLinear, KindQuadratic, KindCubic, KindPiecewisePolynomial, KindPchip, KindAkima}
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			out, err := NewInterpolator().Execute(newInput(values, mask...), kind)
			require.NoError(t, err)
			for _, p := range mask {
				assert.InDelta(t, values[p], out.Imputed.Values[p], 1e-9)
			}
		})
	}

	for _, kind := range []string{KindPolynomial, KindSpline} {
		t.Run(kind, func(t *testing.T) {
			out, err := NewOrderInterpolator(DefaultOrder).Execute(newInput(values, mask...), kind)
			require.NoError(t, err)
			for _, p := range mask {
				assert.InDelta(t, values[p], out.Imputed.Values[p], 1e-9)
			}
		})
	}
}

func TestInterpolateStepKinds(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		kind     string
		expected []float64
	}{
		{"nearest", []float64{0, nan, nan, 3}, KindNearest, []float64{0, 0, 3, 3}},
		{"nearest tie goes to earlier", []float64{0, nan, 2}, KindNearest, []float64{0, 0, 2}},
		{"zero holds previous", []float64{1, nan, nan, 4}, KindZero, []float64{1, 1, 1, 4}},
		{"edges filled both ways", []float64{nan, nan, 2, nan, 4, nan}, KindLinear, []float64{2, 2, 2, 3, 4, 4}},
		{"single observation", []float64{nan, 5, nan}, KindCubic, []float64{5, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewInterpolator().Execute(newInput(tt.values), tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Imputed.Values)
		})
	}
}

func TestInterpolateTimeUsesTimestamps(t *testing.T) {
	day := 24 * time.Hour
	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	series, err := timeseries.NewWithTimestamps(
		[]time.Time{base, base.Add(day), base.Add(4 * day)},
		[]float64{0, nan, 8},
	)
	require.NoError(t, err)
	in := &Input{Original: series, Masked: series, Mask: sets.NewInt()}

	timed, err := NewInterpolator().Execute(in, KindTime)
	require.NoError(t, err)
	assert.InDelta(t, 2, timed.Imputed.Values[1], 1e-12)

	positional, err := NewInterpolator().Execute(in, KindLinear)
	require.NoError(t, err)
	assert.InDelta(t, 4, positional.Imputed.Values[1], 1e-12)
}

func TestInterpolateErrors(t *testing.T) {
	_, err := NewInterpolator().Execute(newInput([]float64{1, nan, 3}), "barycentric")
	requireParameterError(t, err)

	_, err = NewInterpolator().Execute(newInput([]float64{nan, nan}), KindLinear)
	requireParameterError(t, err)

	_, err = NewOrderInterpolator(0).Execute(newInput([]float64{1, nan, 3}), KindPolynomial)
	requireParameterError(t, err)

	_, err = NewOrderInterpolator(MaxOrder+1).Execute(newInput([]float64{1, nan, 3}), KindSpline)
	requireParameterError(t, err)

	_, err = NewOrderInterpolator(2).Execute(newInput([]float64{1, nan, 3}), "hermite")
	requireParameterError(t, err)
}

func TestInterpolateCubicTooFewPoints(t *testing.T) {
	_, err := NewInterpolator().Execute(newInput([]float64{1, nan, 2}), KindCubic)
	requireParameterError(t, err)
}

func TestInterpolateSparseSeries(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"one observed", []float64{nan, 4, nan}},
		{"two observed", []float64{1, nan, 2}},
		{"two observed with edges", []float64{nan, 1, nan, nan, 2, nan}},
		{"all missing", []float64{nan, nan, nan}},
	}

	for _, tt := range tests {
		for _, kind := range []string{KindCubic, KindPchip, KindAkima, KindLinear} {
			t.Run(tt.name+"/"+kind, func(t *testing.T) {
				out, err := NewInterpolator().Execute(newInput(tt.values), kind)
				if err != nil {
					requireParameterError(t, err)
					return
				}
				assert.Zero(t, out.Imputed.MissingCount())
			})
		}
	}
}

func TestPolynomialReproducesParabola(t *testing.T) {
	values := make([]float64, 10)
	for i := range values {
		x := float64(i)
		values[i] = x*x - 3*x + 2
	}
	mask := []int{1, 4, 5, 8}

	for _, kind := range []string{KindPolynomial, KindSpline} {
		out, err := NewOrderInterpolator(2).Execute(newInput(values, mask...), kind)
		require.NoError(t, err)
		for _, p := range mask {
			assert.InDelta(t, values[p], out.Imputed.Values[p], 1e-9, "%s at %d", kind, p)
		}
	}
}

func TestLOCF(t *testing.T) {
	out, err := NewLOCF().Execute(newInput([]float64{nan, 1, nan, nan, 4, nan}), "")
	require.NoError(t, err)

	assert.True(t, out.Imputed.IsMissing(0), "leading gap has nothing to carry forward")
	assert.Equal(t, []float64{1, 1, 1, 4, 4}, out.Imputed.Values[1:])

	_, err = NewLOCF().Execute(newInput([]float64{1, nan}), "7")
	requireParameterError(t, err)
}

func TestKNNImputerSingleFeatureFallsBackToMean(t *testing.T) {
	knn, err := NewKNNImputer(DefaultNeighbors)
	require.NoError(t, err)

	values := []float64{1, 2, nan, 4, 5, 6, 7, 8, nan, 10}
	for _, weights := range []string{WeightsUniform, WeightsDistance} {
		out, err := knn.Execute(newInput(values, 0), weights)
		require.NoError(t, err)
		mean := (2.0 + 4 + 5 + 6 + 7 + 8 + 10) / 7
		for _, p := range []int{0, 2, 8} {
			assert.InDelta(t, mean, out.Imputed.Values[p], 1e-12)
		}
	}

	_, err = knn.Execute(newInput(values), "gaussian")
	requireParameterError(t, err)

	_, err = NewKNNImputer(0)
	assert.Error(t, err)
}

func TestNanEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"all shared", []float64{0, 0}, []float64{3, 4}, 5},
		{"one of three shared", []float64{1, nan, 4}, []float64{2, 5, nan}, math.Sqrt(3)},
		{"two of four shared", []float64{1, 1, nan, nan}, []float64{4, 5, 0, nan}, math.Sqrt(2) * 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, nanEuclidean(tt.a, tt.b), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(nanEuclidean([]float64{nan, 1}, []float64{2, nan})))
}

func TestKNNImputeMultiFeature(t *testing.T) {
	rows := [][]float64{{1, 1}, {2, 2}, {nan, 3}, {10, 10}}

	uniform, err := knnImpute(rows, 2, WeightsUniform)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, uniform[2][0], 1e-12)

	distance, err := knnImpute(rows, 2, WeightsDistance)
	require.NoError(t, err)
	assert.InDelta(t, 5.0/3, distance[2][0], 1e-12)

	exact, err := knnImpute([][]float64{{4, 1}, {6, 2}, {nan, 2}}, 2, WeightsDistance)
	require.NoError(t, err)
	assert.InDelta(t, 6, exact[2][0], 1e-12)

	assert.True(t, math.IsNaN(rows[2][0]), "input rows modified")
}

func TestMovingWindow(t *testing.T) {
	w, err := NewMovingWindow(StatisticMean)
	require.NoError(t, err)

	// length 10 with wsize 3 leaves position 9 as remainder
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	in := newInput(values, 4, 9)
	out, err := w.Execute(in, "3")
	require.NoError(t, err)
	assert.Equal(t, sets.NewInt(4), out.Scored)
	assert.InDelta(t, 5, out.Imputed.Values[4], 1e-12)
	assert.True(t, out.Imputed.IsMissing(9), "remainder is left untouched")
	assert.Equal(t, 10, out.Imputed.Len())

	// no remainder keeps the full mask
	in = newInput(values[:9], 1, 7)
	out, err = w.Execute(in, "3")
	require.NoError(t, err)
	assert.Equal(t, in.Mask, out.Scored)
}

func TestMovingWindowSweepsUntilFilled(t *testing.T) {
	for _, tc := range []struct {
		statistic string
		values    []float64
		expected  []float64
	}{
		{StatisticMean, []float64{nan, nan, nan, nan, 5}, []float64{5, 5, 5, 5, 5}},
		{StatisticMedian, []float64{1, nan, 2, 9, 30}, []float64{1, 2, 2, 9, 30}},
	} {
		w, err := NewMovingWindow(tc.statistic)
		require.NoError(t, err)
		out, err := w.Execute(newInput(tc.values), "5")
		require.NoError(t, err)
		assert.Equal(t, tc.expected, out.Imputed.Values, tc.statistic)
	}
}

func TestMovingWindowErrors(t *testing.T) {
	w, _ := NewMovingWindow(StatisticMean)
	values := []float64{1, 2, 3, 4, 5, 6}

	for _, param := range []string{"4", "0", "-3", "wide"} {
		_, err := w.Execute(newInput(values, 1), param)
		requireParameterError(t, err)
	}

	var empty *EmptyWindowError
	_, err := w.Execute(newInput(values, 1), "7")
	assert.True(t, errors.As(err, &empty), "series shorter than window")

	_, err = w.Execute(newInput([]float64{nan, nan, nan, 4, 5, 6}, 1), "3")
	assert.True(t, errors.As(err, &empty), "all-missing chunk")
	assert.True(t, IsSoft(err))

	_, err = NewMovingWindow("trimmed")
	assert.Error(t, err)
}
