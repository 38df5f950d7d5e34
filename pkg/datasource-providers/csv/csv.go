package csv

import (
	gocontext "context"
	gocsv "encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocrane/crane/pkg/common"
	"k8s.io/klog/v2"

	"github.com/gocrane/imputebench/pkg/datasource"
	"github.com/gocrane/imputebench/pkg/timeseries"
)

const DefaultDateLayout = "2006-01-02"

// dateLayouts are tried after the configured layout.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"2006-01",
}

var _ datasource.History = &provider{}

type provider struct {
	config *datasource.CSVConfig
}

// NewProvider return a csv file data provider. The query of QueryTimeSeries names the
// value column.
func NewProvider(config *datasource.CSVConfig) (datasource.History, error) {
	if config.File == "" {
		return nil, fmt.Errorf("csv file is required")
	}
	return &provider{config: config}, nil
}

func (p *provider) QueryTimeSeries(ctx gocontext.Context, query string, startTime time.Time, endTime time.Time, step time.Duration) ([]*common.TimeSeries, error) {
	file, err := os.Open(p.config.File)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	column := query
	if column == "" {
		column = p.config.ValueColumn
	}
	klog.V(6).Infof("QueryTimeSeries file %v, column: %v", p.config.File, column)
	ts, err := Read(file, column, p.config)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.config.File, err)
	}
	return []*common.TimeSeries{filterRange(ts, startTime, endTime)}, nil
}

// Read reads one value column as a time series. Empty, NA, NaN and null cells are kept
// as missing samples.
func Read(r io.Reader, column string, config *datasource.CSVConfig) (*common.TimeSeries, error) {
	reader := gocsv.NewReader(r)
	reader.TrimLeadingSpace = true
	if config.Delimiter != 0 {
		reader.Comma = config.Delimiter
	}

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	valueIdx, dateIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		switch {
		case h == column:
			valueIdx = i
		case config.DateColumn != "" && h == config.DateColumn:
			dateIdx = i
		}
	}
	if valueIdx == -1 {
		return nil, fmt.Errorf("value column %q not found in header %v", column, header)
	}
	if config.DateColumn != "" && dateIdx == -1 {
		return nil, fmt.Errorf("date column %q not found in header %v", config.DateColumn, header)
	}

	series := &timeseries.Series{Name: column}
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		value, err := parseValue(record[valueIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %v", row+1, err)
		}
		series.Values = append(series.Values, value)
		if dateIdx >= 0 {
			date, err := parseDate(record[dateIdx], config.DateLayout)
			if err != nil {
				return nil, fmt.Errorf("row %d: %v", row+1, err)
			}
			series.Timestamps = append(series.Timestamps, date)
		}
	}

	if series.Len() == 0 {
		return nil, fmt.Errorf("no rows found")
	}
	// without a date column the rows are stamped one day apart
	return series.ToTimeSeries(), nil
}

func parseValue(cell string) (float64, error) {
	cell = strings.TrimSpace(strings.Trim(cell, "\""))
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

func parseDate(cell, layout string) (time.Time, error) {
	cell = strings.TrimSpace(strings.Trim(cell, "\""))
	if layout == "" {
		layout = DefaultDateLayout
	}
	for _, l := range append([]string{layout}, dateLayouts...) {
		if t, err := time.Parse(l, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", cell)
}

// filterRange keeps the samples within [startTime, endTime]; zero bounds are open.
func filterRange(ts *common.TimeSeries, startTime, endTime time.Time) *common.TimeSeries {
	if startTime.IsZero() && endTime.IsZero() {
		return ts
	}
	out := common.NewTimeSeries()
	out.SetLabels(ts.Labels)
	for _, s := range ts.Samples {
		if !startTime.IsZero() && s.Timestamp < startTime.Unix() {
			continue
		}
		if !endTime.IsZero() && s.Timestamp > endTime.Unix() {
			continue
		}
		out.AppendSample(s.Timestamp, s.Value)
	}
	return out
}
