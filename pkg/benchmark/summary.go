package benchmark

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/gocrane/imputebench/pkg/imputer"
)

// SummaryRow aggregates the trials one method won.
type SummaryRow struct {
	Descriptor imputer.Descriptor `json:"descriptor" yaml:"descriptor"`
	Min        float64            `json:"min" yaml:"min"`
	Max        float64            `json:"max" yaml:"max"`
	Mean       float64            `json:"mean" yaml:"mean"`
	Count      int                `json:"count" yaml:"count"`
}

// Summary ranks methods by wins, most first.
type Summary []SummaryRow

// Summarize groups outcomes by winning method. Rows are sorted by count descending;
// equal counts keep the order of the grid.
func Summarize(outcomes []TrialOutcome, grid imputer.Grid) Summary {
	rank := make(map[imputer.Descriptor]int)
	for i, d := range grid.Descriptors() {
		rank[d] = i
	}

	deviations := make(map[imputer.Descriptor]stats.Float64Data)
	var order []imputer.Descriptor
	for _, outcome := range outcomes {
		d := outcome.Descriptor
		if _, seen := deviations[d]; !seen {
			order = append(order, d)
			if _, known := rank[d]; !known {
				rank[d] = len(rank)
			}
		}
		deviations[d] = append(deviations[d], outcome.Deviation)
	}

	summary := make(Summary, 0, len(order))
	for _, d := range order {
		data := deviations[d]
		// data is never empty, so the stats calls cannot fail.
		min, _ := data.Min()
		max, _ := data.Max()
		mean, _ := data.Mean()
		summary = append(summary, SummaryRow{Descriptor: d, Min: min, Max: max, Mean: mean, Count: data.Len()})
	}

	sort.SliceStable(summary, func(i, j int) bool {
		if summary[i].Count != summary[j].Count {
			return summary[i].Count > summary[j].Count
		}
		return rank[summary[i].Descriptor] < rank[summary[j].Descriptor]
	})
	return summary
}

// Best returns the top row.
func (s Summary) Best() (SummaryRow, error) {
	if len(s) == 0 {
		return SummaryRow{}, ErrEmptySummary
	}
	return s[0], nil
}
