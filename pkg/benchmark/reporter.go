package benchmark

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/gocrane/imputebench/pkg/benchmark/config"
	"github.com/gocrane/imputebench/pkg/imputer"
	"github.com/gocrane/imputebench/pkg/timeseries"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reporter renders run results as a table on the console and as files under DataPath.
// An empty output mode prints the table and writes csv, like the comparator reports.
type Reporter struct {
	outputMode string
	dataPath   string
	runId      string
	out        io.Writer
}

func NewReporter(cfg config.Config, out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{
		outputMode: cfg.OutputMode,
		dataPath:   cfg.DataPath,
		runId:      cfg.RunId,
		out:        out,
	}
}

// ImputedPoint is one row of an imputed series report. Nil values are missing.
type ImputedPoint struct {
	Index     int        `json:"index" yaml:"index"`
	Timestamp *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Original  *float64   `json:"original" yaml:"original"`
	Imputed   *float64   `json:"imputed" yaml:"imputed"`
}

func (r *Reporter) ReportSummary(result *Result) error {
	data := [][]string{}
	for _, row := range result.Summary {
		data = append(data, []string{
			row.Descriptor.String(), row.Descriptor.Family, row.Descriptor.Param,
			Float642Str(row.Min), Float642Str(row.Max), Float642Str(row.Mean), strconv.Itoa(row.Count),
		})
	}
	header := []string{"Method", "Family", "Param", "Min", "Max", "Mean", "Count"}
	return r.report(fmt.Sprintf("Summary of %d trials, %d skipped", len(result.Outcomes), result.Skipped), "summary", header, data, result)
}

func (r *Reporter) ReportImputed(applied *ApplyResult, original *timeseries.Series) error {
	points := make([]ImputedPoint, original.Len())
	data := make([][]string, 0, original.Len())
	for i := range points {
		points[i] = ImputedPoint{
			Index:    i,
			Original: valuePtr(original.Values[i]),
			Imputed:  valuePtr(applied.Imputed.Values[i]),
		}
		ts := ""
		if original.HasTimestamps() {
			t := original.Timestamps[i]
			points[i].Timestamp = &t
			ts = t.Format(time.RFC3339)
		}
		data = append(data, []string{strconv.Itoa(i), ts, valueStr(original.Values[i]), valueStr(applied.Imputed.Values[i])})
	}
	header := []string{"Index", "Timestamp", "Original", applied.Descriptor.String()}
	return r.report("Imputed with "+applied.Descriptor.String(), "imputed", header, data, points)
}

func (r *Reporter) ReportGrid(grid imputer.Grid) error {
	data := [][]string{}
	for _, f := range grid {
		data = append(data, []string{f.Name, strings.Join(f.Params, ",")})
	}
	return r.report("Strategy grid", "grid", []string{"Family", "Params"}, data, grid)
}

func (r *Reporter) report(title, name string, header []string, data [][]string, doc interface{}) error {
	fmt.Fprintf(r.out, "Reporting, %s.....................................................................................................\n", title)
	defer fmt.Fprintln(r.out)

	if r.outputMode == "" || r.outputMode == config.OutputModeStdOut {
		r.renderTable(header, data)
	}

	switch r.outputMode {
	case "", config.OutputModeCsv:
		return r.writeCsv(r.filename(name, "csv"), header, data)
	case config.OutputModeJson:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(r.filename(name, "json"), b, 0644)
	case config.OutputModeYaml:
		b, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		return os.WriteFile(r.filename(name, "yaml"), b, 0644)
	case config.OutputModeXlsx:
		return r.writeXlsx(r.filename(name, "xlsx"), name, header, data)
	}
	return nil
}

func (r *Reporter) filename(name, ext string) string {
	prefix := name
	if r.runId != "" {
		prefix = r.runId + "-" + name
	}
	return filepath.Join(r.dataPath, prefix+"."+ext)
}

func (r *Reporter) renderTable(header []string, data [][]string) {
	headerColors := make([]tablewriter.Colors, len(header))
	columnColors := make([]tablewriter.Colors, len(header))
	for i := range header {
		headerColors[i] = tablewriter.Colors{tablewriter.FgHiRedColor, tablewriter.Bold, tablewriter.BgBlackColor}
		columnColors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiRedColor}
	}

	table := tablewriter.NewWriter(r.out)
	table.SetHeaderLine(true)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetHeaderColor(headerColors...)
	table.SetColumnColor(columnColors...)
	table.AppendBulk(data)
	table.Render()
}

func (r *Reporter) writeCsv(filename string, header []string, data [][]string) error {
	csvFile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	csvW := csv.NewWriter(csvFile)
	csvW.Comma = '\t'
	if err = csvW.Write(header); err != nil {
		return err
	}
	return csvW.WriteAll(data)
}

func (r *Reporter) writeXlsx(filename, sheet string, header []string, data [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	for i, row := range append([][]string{header}, data...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(filename)
}

func Float642Str(a float64) string {
	return fmt.Sprintf("%.5f", a)
}

func valueStr(v float64) string {
	if timeseries.IsMissingValue(v) {
		return "NaN"
	}
	return Float642Str(v)
}

func valuePtr(v float64) *float64 {
	if timeseries.IsMissingValue(v) {
		return nil
	}
	return &v
}
