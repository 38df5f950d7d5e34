package imputer

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/gocrane/imputebench/pkg/timeseries"
)

// KNNImputer weights.
const (
	WeightsUniform  = "uniform"
	WeightsDistance = "distance"
)

var _ Executor = &KNNImputer{}

// KNNImputer fills each missing value from its nearest donors under the nan-euclidean
// distance. The series is reshaped into one single-feature row per observation, so a
// row with a missing value shares no observed feature with any donor; such rows fall
// back to the donor mean, exactly as a multi-feature imputer does for all-missing rows.
type KNNImputer struct {
	Neighbors int
}

func NewKNNImputer(neighbors int) (*KNNImputer, error) {
	if neighbors < 1 {
		return nil, fmt.Errorf("neighbors must be positive, got %d", neighbors)
	}
	return &KNNImputer{Neighbors: neighbors}, nil
}

func (k *KNNImputer) Family() string {
	return FamilyKNN
}

func (k *KNNImputer) Execute(in *Input, param string) (*Output, error) {
	if param != WeightsUniform && param != WeightsDistance {
		return nil, parameterError(FamilyKNN, param, "unknown weights")
	}

	rows := make([][]float64, in.Masked.Len())
	for i, v := range in.Masked.Values {
		rows[i] = []float64{v}
	}

	filled, err := knnImpute(rows, k.Neighbors, param)
	if err != nil {
		return nil, wrapParameterError(FamilyKNN, param, err)
	}

	imputed := in.Masked.Copy()
	for i := range filled {
		imputed.Values[i] = filled[i][0]
	}
	return &Output{Imputed: imputed, Scored: in.Mask}, nil
}

// knnImpute imputes every missing cell of rows column by column. Donors for a column are
// the rows observing it; distances use only the features both rows observe.
func knnImpute(rows [][]float64, neighbors int, weights string) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i := range rows {
		out[i] = append([]float64(nil), rows[i]...)
	}
	if len(rows) == 0 {
		return out, nil
	}

	features := len(rows[0])
	for col := 0; col < features; col++ {
		var donors []int
		for i, row := range rows {
			if !timeseries.IsMissingValue(row[col]) {
				donors = append(donors, i)
			}
		}
		if len(donors) == 0 {
			return nil, fmt.Errorf("feature %d has no observed values", col)
		}

		donorMean := 0.0
		for _, d := range donors {
			donorMean += rows[d][col]
		}
		donorMean /= float64(len(donors))

		for i, row := range rows {
			if !timeseries.IsMissingValue(row[col]) {
				continue
			}
			out[i][col] = imputeCell(rows, i, col, donors, neighbors, weights, donorMean)
		}
	}
	return out, nil
}

type donorDistance struct {
	row  int
	dist float64
}

func imputeCell(rows [][]float64, receiver, col int, donors []int, neighbors int, weights string, fallback float64) float64 {
	var candidates []donorDistance
	for _, d := range donors {
		dist := nanEuclidean(rows[receiver], rows[d])
		if !math.IsNaN(dist) {
			candidates = append(candidates, donorDistance{row: d, dist: dist})
		}
	}
	if len(candidates) == 0 {
		return fallback
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	if len(candidates) > neighbors {
		candidates = candidates[:neighbors]
	}

	w := make([]float64, len(candidates))
	if weights == WeightsDistance {
		exact := false
		for _, c := range candidates {
			if c.dist == 0 {
				exact = true
				break
			}
		}
		for i, c := range candidates {
			switch {
			case exact && c.dist == 0:
				w[i] = 1
			case exact:
				w[i] = 0
			default:
				w[i] = 1 / c.dist
			}
		}
	} else {
		for i := range w {
			w[i] = 1
		}
	}

	sum, total := 0.0, 0.0
	for i, c := range candidates {
		sum += w[i] * rows[c.row][col]
		total += w[i]
	}
	return sum / total
}

// nanEuclidean is the euclidean distance over the coordinates both rows observe,
// scaled up by the share of coordinates present. It is NaN when none are shared.
func nanEuclidean(a, b []float64) float64 {
	var sharedA, sharedB []float64
	for i := range a {
		if timeseries.IsMissingValue(a[i]) || timeseries.IsMissingValue(b[i]) {
			continue
		}
		sharedA = append(sharedA, a[i])
		sharedB = append(sharedB, b[i])
	}
	if len(sharedA) == 0 {
		return math.NaN()
	}
	return math.Sqrt(float64(len(a))/float64(len(sharedA))) * floats.Distance(sharedA, sharedB, 2)
}
