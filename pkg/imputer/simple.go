package imputer

import (
	"github.com/montanaflynn/stats"
)

// SimpleImputer strategies.
const (
	StrategyMean         = "mean"
	StrategyMedian       = "median"
	StrategyMostFrequent = "most_frequent"
)

var _ Executor = &SimpleImputer{}

// SimpleImputer fills every missing value, synthetic or not, with one statistic of the
// observed values.
type SimpleImputer struct {
}

func NewSimpleImputer() *SimpleImputer {
	return &SimpleImputer{}
}

func (s *SimpleImputer) Family() string {
	return FamilySimple
}

func (s *SimpleImputer) Execute(in *Input, param string) (*Output, error) {
	data := stats.Float64Data(in.Masked.ObservedValues())
	if data.Len() == 0 {
		return nil, parameterError(FamilySimple, param, "no observed values")
	}

	var fill float64
	var err error
	switch param {
	case StrategyMean:
		fill, err = data.Mean()
	case StrategyMedian:
		fill, err = data.Median()
	case StrategyMostFrequent:
		fill, err = mostFrequent(data)
	default:
		return nil, parameterError(FamilySimple, param, "unknown strategy")
	}
	if err != nil {
		return nil, wrapParameterError(FamilySimple, param, err)
	}

	imputed := fillMissing(in.Masked, func(int) float64 { return fill })
	return &Output{Imputed: imputed, Scored: in.Mask}, nil
}

// mostFrequent returns the smallest of the most frequent values. When every value
// occurs equally often they all tie and the minimum is returned.
func mostFrequent(data stats.Float64Data) (float64, error) {
	modes, err := data.Mode()
	if err != nil {
		return 0, err
	}
	if len(modes) == 0 {
		return data.Min()
	}
	return stats.Min(modes)
}
