package app

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/gocrane/imputebench/cmd/imputebench/app/options"
	"github.com/gocrane/imputebench/pkg/benchmark"
	"github.com/gocrane/imputebench/pkg/consts"
	"github.com/gocrane/imputebench/pkg/datasource"
	csvprovider "github.com/gocrane/imputebench/pkg/datasource-providers/csv"
	"github.com/gocrane/imputebench/pkg/datasource-providers/prom"
	"github.com/gocrane/imputebench/pkg/imputer"
	"github.com/gocrane/imputebench/pkg/timeseries"
)

// NewImputeBenchCommand creates a *cobra.Command object with default parameters
func NewImputeBenchCommand(ctx context.Context) *cobra.Command {
	opts := options.NewOptions()

	cmd := &cobra.Command{
		Use:  consts.ImputeBenchName,
		Long: `imputebench finds the imputation method that best reconstructs the values of a time series hidden on purpose, and fills the real gaps with it`,
	}

	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	opts.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		&cobra.Command{
			Use:   "optimize",
			Short: "rank the imputation methods on a series",
			Run: func(cmd *cobra.Command, args []string) {
				completeAndValidate(opts)
				if err := RunOptimize(ctx, opts); err != nil {
					klog.Errorf("run optimize failed, exit: %v", err)
					os.Exit(255)
				}
			},
		},
		&cobra.Command{
			Use:   "apply",
			Short: "fill the gaps of a series with the best ranked imputation method",
			Run: func(cmd *cobra.Command, args []string) {
				completeAndValidate(opts)
				if err := RunApply(ctx, opts); err != nil {
					klog.Errorf("run apply failed, exit: %v", err)
					os.Exit(255)
				}
			},
		},
		&cobra.Command{
			Use:   "strategies",
			Short: "print the imputation methods evaluated in every trial",
			Run: func(cmd *cobra.Command, args []string) {
				if err := opts.Complete(); err != nil {
					klog.Errorf("opts complete failed, exit: %v", err)
					os.Exit(255)
				}
				if err := opts.ValidateBenchmark(); err != nil {
					klog.Errorf("opts validate failed, exit: %v", err)
					os.Exit(255)
				}
				if err := RunStrategies(opts); err != nil {
					klog.Errorf("run strategies failed, exit: %v", err)
					os.Exit(255)
				}
			},
		},
	)
	return cmd
}

func completeAndValidate(opts *options.Options) {
	if err := opts.Complete(); err != nil {
		klog.Errorf("opts complete failed, exit: %v", err)
		os.Exit(255)
	}
	if err := opts.Validate(); err != nil {
		klog.Errorf("opts validate failed, exit: %v", err)
		os.Exit(255)
	}
}

// RunOptimize ranks the methods on the configured series and reports the summary.
func RunOptimize(ctx context.Context, opts *options.Options) error {
	series, err := LoadSeries(ctx, opts)
	if err != nil {
		return err
	}
	optimizer, err := benchmark.NewOptimizer(opts.Config, nil, nil)
	if err != nil {
		return err
	}

	result, err := optimizer.Optimize(ctx, series)
	if err != nil {
		return err
	}
	if err := writeMetrics(optimizer, opts); err != nil {
		return err
	}
	return benchmark.NewReporter(opts.Config, os.Stdout).ReportSummary(result)
}

// RunApply imputes the configured series with the best method and reports both the
// summary and the imputed series.
func RunApply(ctx context.Context, opts *options.Options) error {
	series, err := LoadSeries(ctx, opts)
	if err != nil {
		return err
	}
	optimizer, err := benchmark.NewOptimizer(opts.Config, nil, nil)
	if err != nil {
		return err
	}

	applied, err := optimizer.Apply(ctx, series)
	if err != nil {
		return err
	}
	if err := writeMetrics(optimizer, opts); err != nil {
		return err
	}

	reporter := benchmark.NewReporter(opts.Config, os.Stdout)
	if err := reporter.ReportSummary(applied.Result); err != nil {
		return err
	}
	return reporter.ReportImputed(applied, series)
}

// RunStrategies prints the effective grid.
func RunStrategies(opts *options.Options) error {
	registry, err := imputer.NewDefaultRegistry(opts.Config.Imputers)
	if err != nil {
		return err
	}
	grid := opts.Config.Grid()
	if err := registry.Validate(grid); err != nil {
		klog.Warningf("Grid does not match the registered imputers %v: %v", registry.Families(), err)
	}
	return benchmark.NewReporter(opts.Config, os.Stdout).ReportGrid(grid)
}

// LoadSeries queries the configured data source for the series to benchmark.
func LoadSeries(ctx context.Context, opts *options.Options) (*timeseries.Series, error) {
	var history datasource.History
	var query string
	var err error
	switch datasource.DataSourceType(strings.ToLower(opts.DataSource)) {
	case datasource.CSVDataSource:
		history, err = csvprovider.NewProvider(&opts.DataSourceCSVConfig)
		query = opts.DataSourceCSVConfig.ValueColumn
	case datasource.PrometheusDataSource:
		history, err = prom.NewProvider(&opts.DataSourcePromConfig)
		query = opts.PrometheusQuery
	default:
		return nil, fmt.Errorf("unknown datasource %q", opts.DataSource)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to create datasource provider %v: %v", opts.DataSource, err)
	}

	tsList, err := history.QueryTimeSeries(ctx, query, opts.History.Start, opts.History.End, opts.History.Step)
	if err != nil {
		return nil, err
	}
	ts, err := datasource.Single(tsList, query)
	if err != nil {
		return nil, err
	}
	series := timeseries.FromTimeSeries(ts)
	klog.Infof("Loaded series %q from %s, %d values, %d missing", series.Name, opts.DataSource, series.Len(), series.MissingCount())
	return series, nil
}

func writeMetrics(optimizer *benchmark.Optimizer, opts *options.Options) error {
	if opts.Config.MetricsFile == "" {
		return nil
	}
	if err := optimizer.Metrics().WriteToTextfile(opts.Config.MetricsFile); err != nil {
		return fmt.Errorf("write metrics to %s: %v", opts.Config.MetricsFile, err)
	}
	return nil
}
