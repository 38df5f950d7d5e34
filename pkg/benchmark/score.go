package benchmark

import (
	"math"

	"github.com/montanaflynn/stats"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/gocrane/imputebench/pkg/timeseries"
)

// Score returns the absolute value of the summed signed deviation between original and
// imputed over positions. Over- and under-estimates cancel; lower is better.
func Score(original, imputed *timeseries.Series, positions sets.Int) (float64, error) {
	// List is sorted, so the sum does not depend on how positions were collected.
	deviations := make(stats.Float64Data, 0, positions.Len())
	for _, p := range positions.List() {
		if p < 0 || p >= original.Len() || p >= imputed.Len() || imputed.IsMissing(p) || original.IsMissing(p) {
			return 0, &UnresolvedError{Position: p}
		}
		deviations = append(deviations, original.Values[p]-imputed.Values[p])
	}
	if deviations.Len() == 0 {
		return 0, nil
	}

	sum, err := deviations.Sum()
	if err != nil {
		return 0, err
	}
	return math.Abs(sum), nil
}
