package imputer

import (
	"github.com/gocrane/imputebench/pkg/timeseries"
)

var _ Executor = &LOCF{}

// LOCF carries the last observation forward. Missing values before the first
// observation have nothing to carry and stay missing; callers must tolerate them.
type LOCF struct {
}

func NewLOCF() *LOCF {
	return &LOCF{}
}

func (l *LOCF) Family() string {
	return FamilyLOCF
}

func (l *LOCF) Execute(in *Input, param string) (*Output, error) {
	if param != "" {
		return nil, parameterError(FamilyLOCF, param, "family takes no parameter")
	}

	imputed := in.Masked.Copy()
	last := timeseries.Missing()
	for i, v := range imputed.Values {
		if timeseries.IsMissingValue(v) {
			imputed.Values[i] = last
			continue
		}
		last = v
	}
	return &Output{Imputed: imputed, Scored: in.Mask}, nil
}
