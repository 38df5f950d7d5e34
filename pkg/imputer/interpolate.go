package imputer

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"

	"github.com/gocrane/imputebench/pkg/timeseries"
)

// Interpolation kinds.
const (
	KindTime                = "time"
	KindLinear              = "linear"
	KindIndex               = "index"
	KindNearest             = "nearest"
	KindZero                = "zero"
	KindSLinear             = "slinear"
	KindQuadratic           = "quadratic"
	KindCubic               = "cubic"
	KindPiecewisePolynomial = "piecewise_polynomial"
	KindPchip               = "pchip"
	KindAkima               = "akima"

	KindPolynomial = "polynomial"
	KindSpline     = "spline"

	// MaxOrder is the highest curve degree Interpolate_with_order accepts.
	MaxOrder = 5
)

var (
	_ Executor = &Interpolator{}
	_ Executor = &OrderInterpolator{}
)

// curve predicts the value at x. It is only called for x strictly inside the range of
// the fitted abscissa.
type curve func(x float64) (float64, error)

// fitter fits a curve over strictly increasing xs.
type fitter func(xs, ys []float64) (curve, error)

// Interpolator fills gaps by fitting a curve through the observed values. Leading and
// trailing gaps take the nearest observed value, so the whole series is filled.
type Interpolator struct {
}

func NewInterpolator() *Interpolator {
	return &Interpolator{}
}

func (i *Interpolator) Family() string {
	return FamilyInterpolate
}

func (i *Interpolator) Execute(in *Input, param string) (*Output, error) {
	fit := kindFitter(param)
	if fit == nil {
		return nil, parameterError(FamilyInterpolate, param, "unknown interpolation kind")
	}

	// time reinterprets the index as elapsed days; the result keeps positional order.
	abscissa := positionalAbscissa(in.Masked.Len())
	if param == KindTime {
		abscissa = in.Masked.DayOffsets()
	}

	imputed, err := interpolate(in.Masked, abscissa, fit)
	if err != nil {
		return nil, wrapParameterError(FamilyInterpolate, param, err)
	}
	return &Output{Imputed: imputed, Scored: in.Mask}, nil
}

// OrderInterpolator fills gaps with polynomial curves of a fixed degree: an
// interpolating polynomial through the Order+1 nearest observations, or a
// least-squares fit over the 2(Order+1) nearest observations.
type OrderInterpolator struct {
	Order int
}

func NewOrderInterpolator(order int) *OrderInterpolator {
	return &OrderInterpolator{Order: order}
}

func (o *OrderInterpolator) Family() string {
	return FamilyInterpolateWithOrder
}

func (o *OrderInterpolator) Execute(in *Input, param string) (*Output, error) {
	if o.Order < 1 || o.Order > MaxOrder {
		return nil, parameterError(FamilyInterpolateWithOrder, param, fmt.Sprintf("order must be in [1, %d], got %d", MaxOrder, o.Order))
	}

	var fit fitter
	switch param {
	case KindPolynomial:
		fit = lagrangeFitter(o.Order)
	case KindSpline:
		fit = leastSquaresFitter(o.Order)
	default:
		return nil, parameterError(FamilyInterpolateWithOrder, param, "unknown interpolation kind")
	}

	imputed, err := interpolate(in.Masked, positionalAbscissa(in.Masked.Len()), fit)
	if err != nil {
		return nil, wrapParameterError(FamilyInterpolateWithOrder, param, err)
	}
	return &Output{Imputed: imputed, Scored: in.Mask}, nil
}

func kindFitter(kind string) fitter {
	switch kind {
	case KindTime, KindLinear, KindIndex, KindSLinear, KindPiecewisePolynomial:
		return gonumFitter(func() interp.FittablePredictor { return &interp.PiecewiseLinear{} })
	case KindNearest:
		return nearestFitter
	case KindZero:
		return previousFitter
	case KindQuadratic:
		return lagrangeFitter(2)
	case KindCubic:
		return gonumFitter(func() interp.FittablePredictor { return &interp.NotAKnotCubic{} })
	case KindPchip:
		return gonumFitter(func() interp.FittablePredictor { return &interp.FritschButland{} })
	case KindAkima:
		return gonumFitter(func() interp.FittablePredictor { return &interp.AkimaSpline{} })
	}
	return nil
}

func positionalAbscissa(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// interpolate fits over the observed points of series and fills every missing position.
func interpolate(series *timeseries.Series, abscissa []float64, fit fitter) (*timeseries.Series, error) {
	positions, ys := series.Observed()
	if len(positions) == 0 {
		return nil, errors.New("no observed values")
	}
	xs := make([]float64, len(positions))
	for i, p := range positions {
		xs[i] = abscissa[p]
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, errors.New("abscissa must be strictly increasing")
		}
	}

	var predict curve
	if len(xs) > 1 {
		var err error
		if predict, err = fit(xs, ys); err != nil {
			return nil, err
		}
	}

	out := series.Copy()
	first, last := xs[0], xs[len(xs)-1]
	for i, v := range out.Values {
		if !timeseries.IsMissingValue(v) {
			continue
		}
		x := abscissa[i]
		switch {
		case x <= first:
			out.Values[i] = ys[0]
		case x >= last:
			out.Values[i] = ys[len(ys)-1]
		default:
			y, err := predict(x)
			if err != nil {
				return nil, err
			}
			out.Values[i] = y
		}
	}
	return out, nil
}

// gonumFitter adapts a gonum predictor. gonum panics on inputs it cannot fit, such as
// too few points for a cubic spline; those panics come back as errors.
func gonumFitter(newPredictor func() interp.FittablePredictor) fitter {
	return func(xs, ys []float64) (_ curve, err error) {
		defer recoverFit(&err)
		p := newPredictor()
		if err := p.Fit(xs, ys); err != nil {
			return nil, err
		}
		return func(x float64) (y float64, err error) {
			defer recoverFit(&err)
			return p.Predict(x), nil
		}, nil
	}
}

func recoverFit(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%v", r)
	}
}

// nearestFitter takes the closest observation; a point half way takes the earlier one.
func nearestFitter(xs, ys []float64) (curve, error) {
	return func(x float64) (float64, error) {
		i := sort.SearchFloat64s(xs, x)
		if xs[i]-x < x-xs[i-1] {
			return ys[i], nil
		}
		return ys[i-1], nil
	}, nil
}

// previousFitter holds the last observation until the next one (zero-order spline).
func previousFitter(xs, ys []float64) (curve, error) {
	return func(x float64) (float64, error) {
		i := sort.SearchFloat64s(xs, x)
		if xs[i] == x {
			return ys[i], nil
		}
		return ys[i-1], nil
	}, nil
}

func lagrangeFitter(degree int) fitter {
	return func(xs, ys []float64) (curve, error) {
		return func(x float64) (float64, error) {
			lo, hi := localWindow(xs, x, degree+1)
			return lagrange(xs[lo:hi], ys[lo:hi], x), nil
		}, nil
	}
}

func leastSquaresFitter(degree int) fitter {
	return func(xs, ys []float64) (curve, error) {
		return func(x float64) (float64, error) {
			lo, hi := localWindow(xs, x, 2*(degree+1))
			return polyFitAt(xs[lo:hi], ys[lo:hi], degree, x)
		}, nil
	}
}

// localWindow returns the bounds [lo, hi) of the size observations closest to x,
// growing towards the nearer side first.
func localWindow(xs []float64, x float64, size int) (int, int) {
	n := len(xs)
	if size > n {
		size = n
	}
	i := sort.SearchFloat64s(xs, x)
	lo, hi := i, i
	for hi-lo < size {
		switch {
		case lo == 0:
			hi++
		case hi == n:
			lo--
		case x-xs[lo-1] <= xs[hi]-x:
			lo--
		default:
			hi++
		}
	}
	return lo, hi
}

func lagrange(xs, ys []float64, x float64) float64 {
	sum := 0.0
	for i := range xs {
		term := ys[i]
		for j := range xs {
			if j != i {
				term *= (x - xs[j]) / (xs[i] - xs[j])
			}
		}
		sum += term
	}
	return sum
}

// polyFitAt fits a least-squares polynomial of the given degree (capped by the number of
// points) and evaluates it at x. Abscissae are shifted to xs[0] for conditioning.
func polyFitAt(xs, ys []float64, degree int, x float64) (float64, error) {
	m := len(xs)
	if degree > m-1 {
		degree = m - 1
	}
	x0 := xs[0]

	a := mat.NewDense(m, degree+1, nil)
	for i, xi := range xs {
		t, p := xi-x0, 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, p)
			p *= t
		}
	}
	b := mat.NewVecDense(m, append([]float64(nil), ys...))

	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		return 0, err
	}

	t, p, y := x-x0, 1.0, 0.0
	for j := 0; j <= degree; j++ {
		y += coef.AtVec(j) * p
		p *= t
	}
	return y, nil
}
