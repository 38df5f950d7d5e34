package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocrane/imputebench/pkg/imputer"
)

var (
	simpleMean   = imputer.Descriptor{Family: imputer.FamilySimple, Param: imputer.StrategyMean}
	simpleMedian = imputer.Descriptor{Family: imputer.FamilySimple, Param: imputer.StrategyMedian}
	knnUniform   = imputer.Descriptor{Family: imputer.FamilyKNN, Param: imputer.WeightsUniform}
	locf         = imputer.Descriptor{Family: imputer.FamilyLOCF}
)

func outcomesOf(d imputer.Descriptor, deviations ...float64) []TrialOutcome {
	var out []TrialOutcome
	for _, dev := range deviations {
		out = append(out, TrialOutcome{Descriptor: d, Deviation: dev})
	}
	return out
}

func TestSelectFirstMinimum(t *testing.T) {
	best, err := Select([]Candidate{
		{Descriptor: simpleMean, Deviation: 1},
		{Descriptor: knnUniform, Deviation: 0.5},
		{Descriptor: locf, Deviation: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, knnUniform, best.Descriptor)

	_, err = Select(nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestSummarizeOrdersByCount(t *testing.T) {
	outcomes := append(outcomesOf(simpleMean, 1, 2, 3), outcomesOf(locf, 4, 0.5, 1, 1, 2, 3, 2.5)...)

	summary := Summarize(outcomes, imputer.DefaultGrid())
	require.Len(t, summary, 2)

	assert.Equal(t, SummaryRow{Descriptor: locf, Min: 0.5, Max: 4, Mean: 2, Count: 7}, summary[0])
	assert.Equal(t, SummaryRow{Descriptor: simpleMean, Min: 1, Max: 3, Mean: 2, Count: 3}, summary[1])

	best, err := summary.Best()
	require.NoError(t, err)
	assert.Equal(t, locf, best.Descriptor)
}

func TestSummarizeTiesKeepGridOrder(t *testing.T) {
	outcomes := append(outcomesOf(knnUniform, 1, 1), outcomesOf(simpleMedian, 2, 2)...)
	outcomes = append(outcomes, outcomesOf(imputer.Descriptor{Family: "ARIMA"}, 0, 0)...)

	summary := Summarize(outcomes, imputer.DefaultGrid())
	require.Len(t, summary, 3)
	assert.Equal(t, simpleMedian, summary[0].Descriptor)
	assert.Equal(t, knnUniform, summary[1].Descriptor)
	assert.Equal(t, "ARIMA", summary[2].Descriptor.Family)
}

func TestEmptySummary(t *testing.T) {
	summary := Summarize(nil, imputer.DefaultGrid())
	assert.Empty(t, summary)

	_, err := summary.Best()
	assert.ErrorIs(t, err, ErrEmptySummary)
}
