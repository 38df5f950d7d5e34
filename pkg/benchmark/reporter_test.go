package benchmark

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/gocrane/imputebench/pkg/benchmark/config"
	"github.com/gocrane/imputebench/pkg/imputer"
	"github.com/gocrane/imputebench/pkg/timeseries"
)

func testResult() *Result {
	outcomes := append(outcomesOf(locf, 1, 3), outcomesOf(simpleMean, 2)...)
	return &Result{
		RunId:    "run",
		Outcomes: outcomes,
		Skipped:  1,
		Summary:  Summarize(outcomes, imputer.DefaultGrid()),
	}
}

func newTestReporter(t *testing.T, mode string) (*Reporter, *bytes.Buffer, string) {
	cfg := config.NewConfig()
	cfg.RunId = "run"
	cfg.OutputMode = mode
	cfg.DataPath = t.TempDir()
	out := &bytes.Buffer{}
	return NewReporter(cfg, out), out, cfg.DataPath
}

func TestReportSummaryDefaultMode(t *testing.T) {
	r, out, dir := newTestReporter(t, "")
	require.NoError(t, r.ReportSummary(testResult()))

	assert.Contains(t, out.String(), "Summary of 3 trials, 1 skipped")
	assert.Contains(t, out.String(), "TimeSeries_LOCF")

	f, err := os.Open(filepath.Join(dir, "run-summary.csv"))
	require.NoError(t, err)
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = '\t'
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Method", "Family", "Param", "Min", "Max", "Mean", "Count"},
		{"TimeSeries_LOCF", "TimeSeries_LOCF", "", "1.00000", "3.00000", "2.00000", "2"},
		{"SimpleImputer__mean", "SimpleImputer", "mean", "2.00000", "2.00000", "2.00000", "1"},
	}, records)
}

func TestReportSummaryStdoutOnly(t *testing.T) {
	r, out, dir := newTestReporter(t, config.OutputModeStdOut)
	require.NoError(t, r.ReportSummary(testResult()))

	assert.Contains(t, out.String(), "SimpleImputer__mean")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportSummaryJson(t *testing.T) {
	r, _, dir := newTestReporter(t, config.OutputModeJson)
	require.NoError(t, r.ReportSummary(testResult()))

	b, err := os.ReadFile(filepath.Join(dir, "run-summary.json"))
	require.NoError(t, err)
	var got Result
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, testResult().Summary, got.Summary)
	assert.Equal(t, 1, got.Skipped)
}

func TestReportSummaryYaml(t *testing.T) {
	r, _, dir := newTestReporter(t, config.OutputModeYaml)
	require.NoError(t, r.ReportSummary(testResult()))

	b, err := os.ReadFile(filepath.Join(dir, "run-summary.yaml"))
	require.NoError(t, err)
	var got Result
	require.NoError(t, yaml.Unmarshal(b, &got))
	assert.Equal(t, testResult().Summary, got.Summary)
}

func TestReportSummaryXlsx(t *testing.T) {
	r, _, dir := newTestReporter(t, config.OutputModeXlsx)
	require.NoError(t, r.ReportSummary(testResult()))

	f, err := excelize.OpenFile(filepath.Join(dir, "run-summary.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("summary")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Method", rows[0][0])
	assert.Equal(t, "TimeSeries_LOCF", rows[1][0])
	assert.Equal(t, "1", rows[2][6])
}

func TestReportImputed(t *testing.T) {
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	original, err := timeseries.NewWithTimestamps(
		[]time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)},
		[]float64{nan, 2, nan},
	)
	require.NoError(t, err)
	applied := &ApplyResult{Descriptor: locf, Imputed: timeseries.New([]float64{nan, 2, 2})}

	r, out, dir := newTestReporter(t, config.OutputModeJson)
	require.NoError(t, r.ReportImputed(applied, original))
	assert.Contains(t, out.String(), "Imputed with TimeSeries_LOCF")

	b, err := os.ReadFile(filepath.Join(dir, "run-imputed.json"))
	require.NoError(t, err)
	var points []ImputedPoint
	require.NoError(t, json.Unmarshal(b, &points))
	require.Len(t, points, 3)
	assert.Nil(t, points[0].Original)
	assert.Nil(t, points[0].Imputed)
	require.NotNil(t, points[2].Imputed)
	assert.Equal(t, 2.0, *points[2].Imputed)
	assert.True(t, base.Add(2*time.Hour).Equal(*points[2].Timestamp))
}

func TestReportGrid(t *testing.T) {
	r, out, _ := newTestReporter(t, config.OutputModeStdOut)
	require.NoError(t, r.ReportGrid(imputer.DefaultGrid()))
	assert.Contains(t, out.String(), "Moving_Win_Imputer")
	assert.Contains(t, out.String(), "3,5,7,9,11,13,15")
}
