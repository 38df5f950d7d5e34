package benchmark

import (
	"errors"
	"math/rand"

	"k8s.io/klog/v2"

	"github.com/gocrane/imputebench/pkg/imputer"
	"github.com/gocrane/imputebench/pkg/timeseries"
)

// Candidate is the deviation one method reached in one trial.
type Candidate struct {
	Descriptor imputer.Descriptor `json:"descriptor" yaml:"descriptor"`
	Deviation  float64            `json:"deviation" yaml:"deviation"`
}

// TrialOutcome is the best candidate of one trial.
type TrialOutcome struct {
	Trial      int                `json:"trial" yaml:"trial"`
	Descriptor imputer.Descriptor `json:"descriptor" yaml:"descriptor"`
	Deviation  float64            `json:"deviation" yaml:"deviation"`
	// Mask holds the positions hidden in the trial, sorted.
	Mask       []int       `json:"mask" yaml:"mask"`
	Candidates []Candidate `json:"-" yaml:"-"`
}

// Select returns the first candidate with the lowest deviation.
func Select(candidates []Candidate) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoCandidates
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Deviation < best.Deviation {
			best = c
		}
	}
	return best, nil
}

// RunTrial masks series once and scores every method of the grid against it. Methods
// that fail softly are dropped from the trial; an unregistered family or a fatal
// executor error aborts it.
func (o *Optimizer) RunTrial(rng *rand.Rand, series *timeseries.Series) (*TrialOutcome, error) {
	masked, mask, err := o.masker.Mask(rng, series, o.config.Fraction)
	if err != nil {
		return nil, err
	}
	in := &imputer.Input{Original: series, Masked: masked, Mask: mask}

	var candidates []Candidate
	for _, family := range o.grid {
		executor, err := o.registry.Resolve(family.Name)
		if err != nil {
			return nil, err
		}

		params := family.Params
		if params == nil {
			params = []string{""}
		}
		for _, param := range params {
			d := imputer.Descriptor{Family: family.Name, Param: param}
			deviation, err := o.evaluate(executor, in, d)
			if err != nil {
				if !imputer.IsSoft(err) {
					return nil, err
				}
				continue
			}
			candidates = append(candidates, Candidate{Descriptor: d, Deviation: deviation})
		}
	}

	best, err := Select(candidates)
	if err != nil {
		return nil, err
	}
	return &TrialOutcome{
		Descriptor: best.Descriptor,
		Deviation:  best.Deviation,
		Mask:       mask.List(),
		Candidates: candidates,
	}, nil
}

// evaluate runs one method and scores it.
func (o *Optimizer) evaluate(executor imputer.Executor, in *imputer.Input, d imputer.Descriptor) (float64, error) {
	out, err := executor.Execute(in, d.Param)
	if err != nil {
		var empty *imputer.EmptyWindowError
		if errors.As(err, &empty) {
			klog.V(4).Infof("Skip %s: %v", d, err)
		} else {
			klog.V(2).Infof("Skip %s: %v", d, err)
		}
		o.metrics.candidateFailed(d, resultFailed)
		return 0, err
	}

	deviation, err := Score(in.Original, out.Imputed, out.Scored)
	if err != nil {
		klog.V(3).Infof("Skip %s, unresolved result: %v", d, err)
		o.metrics.candidateFailed(d, resultUnresolved)
		return 0, err
	}
	klog.V(6).Infof("Method %s deviation %v", d, deviation)
	o.metrics.observeCandidate(d, deviation)
	return deviation, nil
}
