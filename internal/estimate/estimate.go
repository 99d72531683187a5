// Package estimate implements two ability estimators: maximum
// likelihood (via bracketed 1-D minimization over four starting
// points) and expected a posteriori (via grid quadrature).
package estimate

import (
	"math"

	"github.com/adaptivecat/engine/internal/irt"
	"github.com/adaptivecat/engine/internal/optimize"
)

// Bounds is the θ-range an estimate is clamped into.
type Bounds struct {
	Min float64
	Max float64
}

func (b Bounds) clamp(theta float64) float64 {
	if theta < b.Min {
		return b.Min
	}
	if theta > b.Max {
		return b.Max
	}
	return theta
}

// StandardError returns 1/√ΣI(θ;ζᵢ), or +Inf if the information sum is
// zero (no administered item carries information at this θ).
func StandardError(theta float64, params []irt.Params) float64 {
	var sum float64
	for _, p := range params {
		sum += irt.Information(theta, p)
	}
	if sum == 0 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(sum)
}

// MLE finds the maximum-likelihood ability estimate over the
// administered (params, responses) pattern. It minimizes the negative
// log-likelihood from four starting points — 0, bounds.Min/2,
// bounds.Max/2, and the bounds midpoint — and keeps the globally best
// local minimum found, clamped into bounds.
//
// Returns the estimate and its standard error.
func MLE(bounds Bounds, params []irt.Params, responses []int) (theta, se float64) {
	negLogLik := func(t float64) float64 {
		return -irt.LogLikelihood(t, params, responses)
	}

	starts := []float64{
		0,
		bounds.Min / 2,
		bounds.Max / 2,
		(bounds.Min + bounds.Max) / 2,
	}

	bestTheta := starts[0]
	bestNegLL := math.Inf(1)
	for _, x0 := range starts {
		x, fx := optimize.Minimize(negLogLik, x0)
		if fx < bestNegLL {
			bestNegLL = fx
			bestTheta = x
		}
	}

	theta = bounds.clamp(bestTheta)
	se = StandardError(theta, params)
	return theta, se
}

// EAP computes the posterior-mean ability estimate over prior, a
// discrete (θ, mass) grid. For each grid cell it forms
// ℓ(θ) = exp(logL(θ)) and returns Σθ θ·ℓ(θ)·π(θ) / Σθ ℓ(θ)·π(θ),
// clamped into bounds. If the denominator underflows to 0 the estimate
// is 0 (clamped into bounds if 0 falls outside them).
func EAP(bounds Bounds, prior []irt.GridPoint, params []irt.Params, responses []int) (theta, se float64) {
	var numerator, denominator float64
	for _, cell := range prior {
		ll := irt.LogLikelihood(cell.Theta, params, responses)
		likelihood := math.Exp(ll)
		weight := likelihood * cell.Prob
		numerator += cell.Theta * weight
		denominator += weight
	}

	var est float64
	if denominator != 0 {
		est = numerator / denominator
	}

	theta = bounds.clamp(est)
	se = StandardError(theta, params)
	return theta, se
}
