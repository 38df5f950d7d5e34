// Package imputer holds the imputation strategy families, the parameter grid they are
// evaluated over and the registry that binds family names to executors.
package imputer

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/gocrane/imputebench/pkg/timeseries"
)

// Descriptor identifies one candidate imputation method: a family and one parameter
// from its grid. Parameterless families use an empty Param.
type Descriptor struct {
	Family string `json:"family" yaml:"family"`
	Param  string `json:"param,omitempty" yaml:"param,omitempty"`
}

func (d Descriptor) String() string {
	if d.Param == "" {
		return d.Family
	}
	return d.Family + "__" + d.Param
}

// Input is what every executor receives. Original is the series before synthetic
// masking, Masked has Mask set to missing on top of the original gaps.
type Input struct {
	Original *timeseries.Series
	Masked   *timeseries.Series
	Mask     sets.Int
}

// Output is an imputed series and the positions it should be scored on. Imputed always
// has the length of the input; Scored may be narrower than Input.Mask when the
// executor leaves part of the series out.
type Output struct {
	Imputed *timeseries.Series
	Scored  sets.Int
}

// Executor imputes the missing values of a series for one family of strategies.
// Implementations must not modify the input series.
type Executor interface {
	// Family returns the name the executor is registered under.
	Family() string
	// Execute imputes in.Masked with the given parameter value.
	Execute(in *Input, param string) (*Output, error)
}

// Options carry the settings shared by executor families.
type Options struct {
	// Order is the curve degree used by Interpolate_with_order.
	Order int
	// Neighbors is the number of donors used by KNNImputer.
	Neighbors int
	// WindowStatistic is the statistic used by Moving_Win_Imputer, mean or median.
	WindowStatistic string
}

const (
	DefaultOrder           = 2
	DefaultNeighbors       = 5
	DefaultWindowStatistic = StatisticMean
)

// DefaultOptions returns the executor defaults.
func DefaultOptions() Options {
	return Options{
		Order:           DefaultOrder,
		Neighbors:       DefaultNeighbors,
		WindowStatistic: DefaultWindowStatistic,
	}
}

// fillMissing returns a copy of series with every missing position replaced by fn(i).
func fillMissing(series *timeseries.Series, fn func(i int) float64) *timeseries.Series {
	out := series.Copy()
	for i, v := range out.Values {
		if timeseries.IsMissingValue(v) {
			out.Values[i] = fn(i)
		}
	}
	return out
}
