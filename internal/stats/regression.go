// Package stats wraps the small amount of inferential statistics the
// correlation view needs: ordinary least squares over one predictor, the
// Pearson correlation coefficient with its two-sided test for zero
// correlation, and a 95% confidence band around the fitted line.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInsufficientData is returned when a fit is requested over fewer than
// two points, or over points that carry no usable variation. Callers surface
// this as an "insufficient data" state, never as a failure.
var ErrInsufficientData = errors.New("insufficient data for regression")

// confidenceLevel is the coverage of the regression confidence band.
const confidenceLevel = 0.95

// Regression holds a fitted line y = Intercept + Slope*x together with the
// Pearson correlation of the underlying points. PValue is nil when the test
// has no degrees of freedom (exactly two points).
type Regression struct {
	N         int      `json:"n"`
	Slope     float64  `json:"slope"`
	Intercept float64  `json:"intercept"`
	R         float64  `json:"pearson_r"`
	R2        float64  `json:"r_squared"`
	PValue    *float64 `json:"p_value,omitempty"`

	xs, ys []float64
}

// BandPoint is the fitted value and confidence bounds at one x position.
type BandPoint struct {
	X     float64 `json:"x"`
	Fit   float64 `json:"fit"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Fit runs an ordinary least squares regression of ys on xs and computes the
// Pearson correlation with its two-sided p-value.
func Fit(xs, ys []float64) (*Regression, error) {
	if len(xs) != len(ys) {
		return nil, errors.New("regression inputs have mismatched lengths")
	}
	if len(xs) < 2 {
		return nil, ErrInsufficientData
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r := stat.Correlation(xs, ys, nil)

	// Zero variance on either axis makes slope or r undefined.
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(r) {
		return nil, ErrInsufficientData
	}

	reg := &Regression{
		N:         len(xs),
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		R2:        stat.RSquared(xs, ys, nil, intercept, slope),
		xs:        append([]float64(nil), xs...),
		ys:        append([]float64(nil), ys...),
	}

	if df := len(xs) - 2; df >= 1 {
		p := pearsonPValue(r, df)
		reg.PValue = &p
	}

	return reg, nil
}

// pearsonPValue is the two-sided test of H0: rho = 0 via the t transform of
// r with df degrees of freedom.
func pearsonPValue(r float64, df int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	t := r * math.Sqrt(float64(df)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return 2 * dist.CDF(-math.Abs(t))
}

// ConfidenceBand evaluates the 95% confidence band of the mean response at
// every fitted x, ordered by increasing x. With no degrees of freedom the
// band collapses onto the fitted line.
func (reg *Regression) ConfidenceBand() []BandPoint {
	xs := append([]float64(nil), reg.xs...)
	sort.Float64s(xs)

	n := float64(reg.N)
	xbar := stat.Mean(reg.xs, nil)

	var sxx, sse float64
	for i, x := range reg.xs {
		sxx += (x - xbar) * (x - xbar)
		resid := reg.ys[i] - (reg.Intercept + reg.Slope*reg.xs[i])
		sse += resid * resid
	}

	df := reg.N - 2
	band := make([]BandPoint, len(xs))

	if df < 1 || sxx == 0 {
		for i, x := range xs {
			fit := reg.Intercept + reg.Slope*x
			band[i] = BandPoint{X: x, Fit: fit, Lower: fit, Upper: fit}
		}
		return band
	}

	s := math.Sqrt(sse / float64(df))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	tcrit := dist.Quantile(1 - (1-confidenceLevel)/2)

	for i, x := range xs {
		fit := reg.Intercept + reg.Slope*x
		margin := tcrit * s * math.Sqrt(1/n+(x-xbar)*(x-xbar)/sxx)
		band[i] = BandPoint{X: x, Fit: fit, Lower: fit - margin, Upper: fit + margin}
	}

	return band
}
