package timeseries

import (
	"sort"
	"time"

	"github.com/gocrane/crane/pkg/common"

	"github.com/gocrane/imputebench/pkg/consts"
)

// LabelName is the label carrying the series name when converting to a crane time series.
const LabelName = consts.LabelMetricName

// FromTimeSeries builds a Series from a crane time series. Samples are ordered by
// timestamp (unix seconds); NaN sample values stay missing.
func FromTimeSeries(ts *common.TimeSeries) *Series {
	samples := make([]common.Sample, len(ts.Samples))
	copy(samples, ts.Samples)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp < samples[j].Timestamp
	})

	series := &Series{
		Timestamps: make([]time.Time, len(samples)),
		Values:     make([]float64, len(samples)),
	}
	for i, sample := range samples {
		series.Timestamps[i] = time.Unix(sample.Timestamp, 0).UTC()
		series.Values[i] = sample.Value
	}
	for _, label := range ts.Labels {
		if label.Name == LabelName {
			series.Name = label.Value
		}
	}
	return series
}

// SecondsPerDay spaces the samples of a positional series.
const SecondsPerDay = 24 * 60 * 60

// ToTimeSeries converts the series into a crane time series. Positional series get
// timestamps one day apart from the unix epoch, so their day offsets equal the index.
func (s *Series) ToTimeSeries() *common.TimeSeries {
	samples := make([]common.Sample, len(s.Values))
	for i, v := range s.Values {
		ts := int64(i) * SecondsPerDay
		if s.HasTimestamps() {
			ts = s.Timestamps[i].Unix()
		}
		samples[i] = common.Sample{Timestamp: ts, Value: v}
	}

	out := common.NewTimeSeries()
	if s.Name != "" {
		out.SetLabels([]common.Label{{Name: LabelName, Value: s.Name}})
	}
	out.SetSamples(samples)
	return out
}
