package config

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/gcfg.v1"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/gocrane/imputebench/pkg/imputer"
	"github.com/gocrane/imputebench/pkg/masker"
)

type Config struct {
	// RunId tags logs, metrics and report file names of one run.
	RunId    string
	Trials   int     `validate:"gte=1"`
	Fraction float64 `validate:"gte=0,lt=1"`
	Sampler  string  `validate:"oneof=batch sequential"`
	Seed     int64
	// Workers above one runs trials in parallel.
	Workers  int `validate:"gte=1"`
	Imputers imputer.Options
	// Families overrides the default grid, keyed by family name.
	Families   map[string]*FamilyConfig
	OutputMode string `validate:"omitempty,oneof=stdout csv json yaml xlsx"`
	DataPath   string
	// MetricsFile receives the run metrics in text exposition format when set.
	MetricsFile string
}

// FamilyConfig overrides one family of the grid.
type FamilyConfig struct {
	Param    []string
	Disabled bool
}

const (
	OutputModeCsv    = "csv"
	OutputModeStdOut = "stdout"
	OutputModeJson   = "json"
	OutputModeYaml   = "yaml"
	OutputModeXlsx   = "xlsx"
)

const (
	DefaultTrials   = 100
	DefaultFraction = 0.1
)

// NewConfig returns the benchmark defaults.
func NewConfig() Config {
	return Config{
		Trials:   DefaultTrials,
		Fraction: DefaultFraction,
		Sampler:  string(masker.BatchSampler),
		Workers:  1,
		Imputers: imputer.DefaultOptions(),
		DataPath: ".",
	}
}

var validate = validator.New()

// Validate checks the config fields. Order is left to Interpolate_with_order, which
// drops its candidates when the order is out of range.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	switch c.Imputers.WindowStatistic {
	case imputer.StatisticMean, imputer.StatisticMedian:
	default:
		return fmt.Errorf("unsupported window statistic %q", c.Imputers.WindowStatistic)
	}
	if c.Imputers.Neighbors < 1 {
		return fmt.Errorf("neighbors must be positive, got %d", c.Imputers.Neighbors)
	}
	return nil
}

// Grid applies the family overrides to the default grid. Overrides naming a family the
// default grid does not know are appended, so a missing executor surfaces at run time.
func (c *Config) Grid() imputer.Grid {
	grid := imputer.DefaultGrid()
	for _, name := range sets.StringKeySet(c.Families).List() {
		family := c.Families[name]
		switch {
		case family == nil:
		case family.Disabled:
			grid = grid.Without(name)
		case len(family.Param) > 0:
			grid = grid.WithParams(name, family.Param)
		}
	}
	return grid
}

// File is the layout of the INI config file:
//
//	[benchmark]
//	trials = 200
//	window-statistic = median
//
//	[family "Moving_Win_Imputer"]
//	param = 3
//	param = 5
type File struct {
	Benchmark struct {
		Trials          int
		Fraction        float64
		Sampler         string
		Seed            int64
		Workers         int
		Order           int
		Neighbors       int
		WindowStatistic string `gcfg:"window-statistic"`
	}
	Family map[string]*FamilyConfig
}

// ReadFile reads an INI config from r on top of c. Variables missing from the file keep
// the values already in c.
func (c *Config) ReadFile(r io.Reader) error {
	var f File
	f.Benchmark.Trials = c.Trials
	f.Benchmark.Fraction = c.Fraction
	f.Benchmark.Sampler = c.Sampler
	f.Benchmark.Seed = c.Seed
	f.Benchmark.Workers = c.Workers
	f.Benchmark.Order = c.Imputers.Order
	f.Benchmark.Neighbors = c.Imputers.Neighbors
	f.Benchmark.WindowStatistic = c.Imputers.WindowStatistic

	if err := gcfg.FatalOnly(gcfg.ReadInto(&f, r)); err != nil {
		return err
	}

	c.Trials = f.Benchmark.Trials
	c.Fraction = f.Benchmark.Fraction
	c.Sampler = f.Benchmark.Sampler
	c.Seed = f.Benchmark.Seed
	c.Workers = f.Benchmark.Workers
	c.Imputers.Order = f.Benchmark.Order
	c.Imputers.Neighbors = f.Benchmark.Neighbors
	c.Imputers.WindowStatistic = f.Benchmark.WindowStatistic
	if len(f.Family) > 0 {
		if c.Families == nil {
			c.Families = make(map[string]*FamilyConfig, len(f.Family))
		}
		for name, family := range f.Family {
			c.Families[name] = family
		}
	}
	return nil
}
