// Package benchmark ranks imputation methods by how well they reconstruct values that
// were hidden on purpose, and applies the best one to the real gaps of a series.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/gocrane/imputebench/pkg/benchmark/config"
	"github.com/gocrane/imputebench/pkg/imputer"
	"github.com/gocrane/imputebench/pkg/log"
	"github.com/gocrane/imputebench/pkg/masker"
	"github.com/gocrane/imputebench/pkg/timeseries"
)

// Optimizer runs repeated trials over one grid of methods.
type Optimizer struct {
	config   config.Config
	registry *imputer.Registry
	grid     imputer.Grid
	masker   *masker.Masker
	metrics  *Metrics
	logger   logr.Logger
}

// Result is everything one optimizer run produced.
type Result struct {
	RunId string `json:"runId" yaml:"runId"`
	// Outcomes holds one entry per completed trial, in trial order.
	Outcomes []TrialOutcome `json:"outcomes" yaml:"outcomes"`
	Skipped  int            `json:"skipped" yaml:"skipped"`
	Summary  Summary        `json:"summary" yaml:"summary"`
}

// NewOptimizer validates cfg and binds it to registry and grid. A nil registry builds
// the default one from cfg; a nil grid takes the grid of cfg.
func NewOptimizer(cfg config.Config, registry *imputer.Registry, grid imputer.Grid) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid benchmark config: %w", err)
	}
	if cfg.RunId == "" {
		cfg.RunId = uuid.NewString()
	}
	if registry == nil {
		var err error
		if registry, err = imputer.NewDefaultRegistry(cfg.Imputers); err != nil {
			return nil, err
		}
	}
	if grid == nil {
		grid = cfg.Grid()
	}
	m, err := masker.New(masker.Sampler(cfg.Sampler))
	if err != nil {
		return nil, err
	}

	return &Optimizer{
		config:   cfg,
		registry: registry,
		grid:     grid,
		masker:   m,
		metrics:  NewMetrics(cfg.RunId),
		logger:   log.Logger().WithValues("run", cfg.RunId),
	}, nil
}

func (o *Optimizer) RunId() string {
	return o.config.RunId
}

func (o *Optimizer) Grid() imputer.Grid {
	return o.grid
}

func (o *Optimizer) Metrics() *Metrics {
	return o.metrics
}

// Optimize runs the configured number of trials on series and ranks the winners.
// Trial i draws its mask from a source seeded with Seed+i, so the result does not
// depend on the number of workers.
func (o *Optimizer) Optimize(ctx context.Context, series *timeseries.Series) (*Result, error) {
	o.logger.Info("Optimizing", "series", series.Name, "length", series.Len(), "missing", series.MissingCount(),
		"trials", o.config.Trials, "fraction", o.config.Fraction, "methods", len(o.grid.Descriptors()))

	outcomes := make([]*TrialOutcome, o.config.Trials)
	runOne := func(i int) error {
		start := time.Now()
		rng := rand.New(rand.NewSource(o.config.Seed + int64(i)))
		outcome, err := o.RunTrial(rng, series)
		if errors.Is(err, ErrNoCandidates) {
			klog.Warningf("Trial %d skipped: %v", i, err)
			o.metrics.observeTrial(nil, start)
			return nil
		}
		if err != nil {
			return fmt.Errorf("trial %d: %w", i, err)
		}
		outcome.Trial = i
		outcomes[i] = outcome
		o.metrics.observeTrial(outcome, start)
		o.logger.V(4).Info("Trial done", "trial", i, "best", outcome.Descriptor.String(), "deviation", outcome.Deviation)
		return nil
	}

	if o.config.Workers <= 1 {
		for i := range outcomes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := runOne(i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.config.Workers)
		for i := range outcomes {
			if gctx.Err() != nil {
				break
			}
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return runOne(i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	result := &Result{RunId: o.config.RunId}
	for _, outcome := range outcomes {
		if outcome == nil {
			result.Skipped++
			continue
		}
		result.Outcomes = append(result.Outcomes, *outcome)
	}
	result.Summary = Summarize(result.Outcomes, o.grid)

	if best, err := result.Summary.Best(); err == nil {
		o.logger.Info("Optimized", "best", best.Descriptor.String(), "wins", best.Count, "skipped", result.Skipped)
	} else {
		klog.Warningf("Run %s produced no outcome, all %d trials skipped", o.config.RunId, result.Skipped)
	}
	return result, nil
}
