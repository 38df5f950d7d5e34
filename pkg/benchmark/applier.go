package benchmark

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"

	"github.com/gocrane/imputebench/pkg/imputer"
	"github.com/gocrane/imputebench/pkg/timeseries"
)

// ApplyResult is the series imputed with the best method and how it was chosen.
type ApplyResult struct {
	Descriptor imputer.Descriptor `json:"descriptor" yaml:"descriptor"`
	Imputed    *timeseries.Series `json:"-" yaml:"-"`
	Result     *Result            `json:"result" yaml:"result"`
}

// Apply ranks the grid on series and imputes its real gaps with the winner.
func (o *Optimizer) Apply(ctx context.Context, series *timeseries.Series) (*ApplyResult, error) {
	result, err := o.Optimize(ctx, series)
	if err != nil {
		return nil, err
	}
	best, err := result.Summary.Best()
	if err != nil {
		return nil, err
	}

	imputed, err := ApplyMethod(o.registry, best.Descriptor, series)
	if err != nil {
		return nil, err
	}
	o.logger.Info("Applied", "method", best.Descriptor.String(), "filled", series.MissingCount()-imputed.MissingCount())
	return &ApplyResult{Descriptor: best.Descriptor, Imputed: imputed, Result: result}, nil
}

// ApplyMethod imputes the missing values of series with one method. Nothing is masked
// and nothing is scored; positions the method cannot fill stay missing.
func ApplyMethod(registry *imputer.Registry, d imputer.Descriptor, series *timeseries.Series) (*timeseries.Series, error) {
	executor, ok := registry.Get(d.Family)
	if !ok {
		return nil, &ApplyMismatchError{Descriptor: d}
	}

	in := &imputer.Input{Original: series, Masked: series.Copy(), Mask: sets.NewInt()}
	out, err := executor.Execute(in, d.Param)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", d, err)
	}
	if left := out.Imputed.MissingCount(); left > 0 {
		klog.Warningf("Method %s left %d values missing", d, left)
	}
	return out.Imputed, nil
}
