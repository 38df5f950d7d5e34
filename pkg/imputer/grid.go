package imputer

import (
	"strconv"
)

// Family names, as they appear in descriptors and reports.
const (
	FamilySimple               = "SimpleImputer"
	FamilyKNN                  = "KNNImputer"
	FamilyInterpolate          = "Interpolate"
	FamilyInterpolateWithOrder = "Interpolate_with_order"
	FamilyLOCF                 = "TimeSeries_LOCF"
	FamilyMovingWindow         = "Moving_Win_Imputer"
)

// Family is one row of the grid: a strategy family and the parameter values it is
// evaluated with. Nil Params means the family takes no parameter.
type Family struct {
	Name   string   `json:"name" yaml:"name"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Grid is the ordered list of families evaluated in every trial. Order matters: when
// two candidates tie, the one met first wins.
type Grid []Family

// DefaultGrid returns the built-in strategy grid.
func DefaultGrid() Grid {
	// Moving window sizes must be odd so the window has a midpoint.
	var windows []string
	for w := 3; w < 16; w += 2 {
		windows = append(windows, strconv.Itoa(w))
	}

	return Grid{
		{Name: FamilySimple, Params: []string{StrategyMean, StrategyMedian, StrategyMostFrequent}},
		{Name: FamilyKNN, Params: []string{WeightsUniform, WeightsDistance}},
		{Name: FamilyInterpolate, Params: []string{
			KindTime, KindLinear, KindIndex, KindNearest, KindZero,
			KindSLinear, KindQuadratic, KindCubic,
			KindPiecewisePolynomial, KindPchip, KindAkima,
		}},
		{Name: FamilyInterpolateWithOrder, Params: []string{KindPolynomial, KindSpline}},
		{Name: FamilyLOCF},
		{Name: FamilyMovingWindow, Params: windows},
	}
}

// Descriptors lists every candidate of the grid in iteration order.
func (g Grid) Descriptors() []Descriptor {
	var out []Descriptor
	for _, f := range g {
		if f.Params == nil {
			out = append(out, Descriptor{Family: f.Name})
			continue
		}
		for _, p := range f.Params {
			out = append(out, Descriptor{Family: f.Name, Param: p})
		}
	}
	return out
}

// Index returns the position of the family in the grid, or -1.
func (g Grid) Index(name string) int {
	for i, f := range g {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// WithParams returns a copy of the grid where the family evaluates params. A family not
// yet in the grid is appended.
func (g Grid) WithParams(name string, params []string) Grid {
	out := g.clone()
	if i := out.Index(name); i >= 0 {
		out[i].Params = append([]string(nil), params...)
		return out
	}
	return append(out, Family{Name: name, Params: append([]string(nil), params...)})
}

// Without returns a copy of the grid without the family.
func (g Grid) Without(name string) Grid {
	out := make(Grid, 0, len(g))
	for _, f := range g {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}

// Only returns a copy of the grid restricted to the named families, keeping grid order.
func (g Grid) Only(names ...string) Grid {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	out := make(Grid, 0, len(names))
	for _, f := range g {
		if keep[f.Name] {
			out = append(out, f)
		}
	}
	return out
}

func (g Grid) clone() Grid {
	out := make(Grid, len(g))
	for i, f := range g {
		out[i] = Family{Name: f.Name}
		if f.Params != nil {
			out[i].Params = append([]string(nil), f.Params...)
		}
	}
	return out
}
