package options

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/gocrane/imputebench/pkg/benchmark/config"
	"github.com/gocrane/imputebench/pkg/consts"
	"github.com/gocrane/imputebench/pkg/datasource"
	"github.com/gocrane/imputebench/pkg/imputer"
	"github.com/gocrane/imputebench/pkg/masker"
)

// EnvPrefix prefixes the environment variables that override flag defaults.
const EnvPrefix = consts.EnvPrefix

// EnvDefaults are the flag defaults, each overridable by an IMPUTEBENCH_* variable.
type EnvDefaults struct {
	DataSource      string  `envconfig:"DATASOURCE" default:"csv"`
	Trials          int     `envconfig:"TRIALS" default:"100"`
	Fraction        float64 `envconfig:"FRACTION" default:"0.1"`
	Sampler         string  `envconfig:"SAMPLER" default:"batch"`
	Seed            int64   `envconfig:"SEED" default:"0"`
	Workers         int     `envconfig:"WORKERS" default:"1"`
	Order           int     `envconfig:"ORDER" default:"2"`
	Neighbors       int     `envconfig:"NEIGHBORS" default:"5"`
	WindowStatistic string  `envconfig:"WINDOW_STATISTIC" default:"mean"`
	OutputMode      string  `envconfig:"OUTPUT_MODE"`
	DataPath        string  `envconfig:"DATA_PATH" default:"."`

	PrometheusAddress     string `envconfig:"PROMETHEUS_ADDRESS"`
	PrometheusBearerToken string `envconfig:"PROMETHEUS_AUTH_BEARERTOKEN"`
}

// HistoryOptions is the range queried from a history data source.
type HistoryOptions struct {
	StartTime string
	EndTime   string
	Length    time.Duration
	Step      time.Duration

	Start time.Time
	End   time.Time
}

// Options hold the command-line options of imputebench
type Options struct {
	Config     config.Config
	ConfigFile string

	DataSource string
	// DataSourceCSVConfig is the csv datasource config
	DataSourceCSVConfig datasource.CSVConfig
	// DataSourcePromConfig is the prometheus datasource config
	DataSourcePromConfig datasource.PromConfig
	PrometheusQuery      string
	History              HistoryOptions

	env    EnvDefaults
	envErr error
	flags  *pflag.FlagSet
}

// NewOptions builds the options with defaults taken from the environment.
func NewOptions() *Options {
	o := &Options{Config: config.NewConfig()}
	o.envErr = envconfig.Process(EnvPrefix, &o.env)
	return o
}

// Complete reads the config file and fills in derived values. Flags given on the
// command line take precedence over the config file.
func (o *Options) Complete() error {
	if o.ConfigFile != "" {
		fromFlags := o.Config
		file, err := os.Open(o.ConfigFile)
		if err != nil {
			return fmt.Errorf("couldn't open config file %s: %v", o.ConfigFile, err)
		}
		defer file.Close()
		if err := o.Config.ReadFile(file); err != nil {
			return fmt.Errorf("failed to read config file %s: %v", o.ConfigFile, err)
		}
		o.keepChangedFlags(fromFlags)
	}

	if o.Config.RunId == "" {
		o.Config.RunId = uuid.NewString()
	}

	if strings.ToLower(o.DataSource) == string(datasource.PrometheusDataSource) {
		return o.completeHistory()
	}
	return nil
}

func (o *Options) completeHistory() error {
	end := time.Now()
	if o.History.EndTime != "" {
		var err error
		if end, err = time.Parse(time.RFC3339, o.History.EndTime); err != nil {
			return fmt.Errorf("parse prometheus end time: %v", err)
		}
	}
	start := end.Add(-o.History.Length)
	if o.History.StartTime != "" {
		var err error
		if start, err = time.Parse(time.RFC3339, o.History.StartTime); err != nil {
			return fmt.Errorf("parse prometheus start time: %v", err)
		}
	}
	o.History.Start, o.History.End = start, end
	return nil
}

func (o *Options) keepChangedFlags(fromFlags config.Config) {
	if o.flags == nil {
		return
	}
	keep := map[string]func(){
		"trials":           func() { o.Config.Trials = fromFlags.Trials },
		"fraction":         func() { o.Config.Fraction = fromFlags.Fraction },
		"sampler":          func() { o.Config.Sampler = fromFlags.Sampler },
		"seed":             func() { o.Config.Seed = fromFlags.Seed },
		"workers":          func() { o.Config.Workers = fromFlags.Workers },
		"order":            func() { o.Config.Imputers.Order = fromFlags.Imputers.Order },
		"neighbors":        func() { o.Config.Imputers.Neighbors = fromFlags.Imputers.Neighbors },
		"window-statistic": func() { o.Config.Imputers.WindowStatistic = fromFlags.Imputers.WindowStatistic },
	}
	for name, apply := range keep {
		if o.flags.Changed(name) {
			apply()
		}
	}
}

// Validate checks the benchmark settings and the selected data source.
func (o *Options) Validate() error {
	errs := []error{o.ValidateBenchmark()}

	switch datasource.DataSourceType(strings.ToLower(o.DataSource)) {
	case datasource.CSVDataSource:
		if o.DataSourceCSVConfig.File == "" {
			errs = append(errs, fmt.Errorf("--csv-file is required for the csv datasource"))
		}
		if o.DataSourceCSVConfig.ValueColumn == "" {
			errs = append(errs, fmt.Errorf("--csv-value-column is required for the csv datasource"))
		}
	case datasource.PrometheusDataSource:
		if o.DataSourcePromConfig.Address == "" {
			errs = append(errs, fmt.Errorf("--prometheus-address is required for the prom datasource"))
		}
		if o.PrometheusQuery == "" {
			errs = append(errs, fmt.Errorf("--prometheus-query is required for the prom datasource"))
		}
		if o.History.Step <= 0 {
			errs = append(errs, fmt.Errorf("--prometheus-step must be positive"))
		}
		if !o.History.End.After(o.History.Start) {
			errs = append(errs, fmt.Errorf("prometheus range end %v must be after start %v", o.History.End, o.History.Start))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown datasource %q, csv and prom are available", o.DataSource))
	}
	return utilerrors.NewAggregate(errs)
}

// ValidateBenchmark checks the settings that do not depend on a data source.
func (o *Options) ValidateBenchmark() error {
	var errs []error
	if o.envErr != nil {
		errs = append(errs, fmt.Errorf("invalid %s_* environment: %v", EnvPrefix, o.envErr))
	}
	if err := o.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	return utilerrors.NewAggregate(errs)
}

// AddFlags adds flags to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		return
	}
	o.flags = fs

	fs.StringVar(&o.ConfigFile, "config", "", "ini config file with a [benchmark] section and [family \"<name>\"] grid overrides")
	fs.IntVar(&o.Config.Trials, "trials", o.env.Trials, "number of masking trials")
	fs.Float64Var(&o.Config.Fraction, "fraction", o.env.Fraction, "fraction of the series length masked in each trial, in [0, 1)")
	fs.StringVar(&o.Config.Sampler, "sampler", o.env.Sampler, fmt.Sprintf("mask sampler, %s or %s", masker.BatchSampler, masker.SequentialSampler))
	fs.Int64Var(&o.Config.Seed, "seed", o.env.Seed, "seed of the first trial, trial i uses seed+i")
	fs.IntVar(&o.Config.Workers, "workers", o.env.Workers, "number of trials run in parallel")
	fs.IntVar(&o.Config.Imputers.Order, "order", o.env.Order, fmt.Sprintf("curve degree of %s, 1 to %d", imputer.FamilyInterpolateWithOrder, imputer.MaxOrder))
	fs.IntVar(&o.Config.Imputers.Neighbors, "neighbors", o.env.Neighbors, fmt.Sprintf("number of donors of %s", imputer.FamilyKNN))
	fs.StringVar(&o.Config.Imputers.WindowStatistic, "window-statistic", o.env.WindowStatistic, fmt.Sprintf("statistic of %s, mean or median", imputer.FamilyMovingWindow))
	fs.StringVar(&o.Config.OutputMode, "output-mode", o.env.OutputMode, "results output mode, includes stdout, csv, json, yaml, xlsx. if no specified, both stdout and csv will output")
	fs.StringVar(&o.Config.DataPath, "data-path", o.env.DataPath, "data path of the report files")
	fs.StringVar(&o.Config.MetricsFile, "metrics-file", "", "file the run metrics are written to in prometheus text format")
	fs.StringVar(&o.Config.RunId, "run-id", "", "id of the run, generated if no specified")

	fs.StringVar(&o.DataSource, "datasource", o.env.DataSource, "data source of the series, csv, prom is available")
	fs.StringVar(&o.DataSourceCSVConfig.File, "csv-file", "", "csv file holding the series")
	fs.StringVar(&o.DataSourceCSVConfig.ValueColumn, "csv-value-column", "y", "csv column holding the values")
	fs.StringVar(&o.DataSourceCSVConfig.DateColumn, "csv-date-column", "", "csv column holding the dates, rows are one day apart if no specified")
	fs.StringVar(&o.DataSourceCSVConfig.DateLayout, "csv-date-layout", "2006-01-02", "go time layout of the csv dates")

	fs.StringVar(&o.DataSourcePromConfig.Address, "prometheus-address", o.env.PrometheusAddress, "prometheus address")
	fs.StringVar(&o.DataSourcePromConfig.Auth.Username, "prometheus-auth-username", "", "prometheus auth username")
	fs.StringVar(&o.DataSourcePromConfig.Auth.Password, "prometheus-auth-password", "", "prometheus auth password")
	fs.StringVar(&o.DataSourcePromConfig.Auth.BearerToken, "prometheus-auth-bearertoken", o.env.PrometheusBearerToken, "prometheus auth bearertoken")
	fs.BoolVar(&o.DataSourcePromConfig.InsecureSkipVerify, "prometheus-insecure-skip-verify", false, "prometheus insecure skip verify")
	fs.DurationVar(&o.DataSourcePromConfig.KeepAlive, "prometheus-keepalive", 60*time.Second, "prometheus keep alive")
	fs.DurationVar(&o.DataSourcePromConfig.Timeout, "prometheus-timeout", 3*time.Minute, "prometheus timeout")
	fs.IntVar(&o.DataSourcePromConfig.MaxPointsLimitPerTimeSeries, "prometheus-maxpoints", 11000, "prometheus max points limit per time series")
	fs.StringVar(&o.PrometheusQuery, "prometheus-query", "", "promql selecting the series")
	fs.StringVar(&o.History.StartTime, "prometheus-start", "", "query range start time in RFC3339, if no specified, it is the end minus the history length")
	fs.StringVar(&o.History.EndTime, "prometheus-end", "", "query range end time in RFC3339, if no specified, default is from now")
	fs.DurationVar(&o.History.Length, "prometheus-history-length", 24*time.Hour, "query range length used when no start time is specified")
	fs.DurationVar(&o.History.Step, "prometheus-step", 5*time.Minute, "query range step")
}
