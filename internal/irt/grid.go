package irt

import "math"

// GridPoint is one (θ, mass) cell of a discrete prior distribution.
type GridPoint struct {
	Theta float64
	Prob  float64
}

// gridStep is the fixed spacing used when discretizing a prior.
const gridStep = 0.1

// round10 rounds to 10 decimal places so adjacent grid cells compare
// equal across platforms.
func round10(x float64) float64 {
	const scale = 1e10
	return math.Round(x*scale) / scale
}

// NormalGrid emits (θ, φ(θ; μ, σ)) for θ = min, min+step, ..., max
// inclusive, at step 0.1. It is intentionally not renormalized — the
// EAP update consumes likelihood·prior as an unnormalized product, so
// a non-normalized prior is harmless.
func NormalGrid(mu, sigma, min, max float64) []GridPoint {
	return normalGridStep(mu, sigma, min, max, gridStep)
}

func normalGridStep(mu, sigma, min, max, step float64) []GridPoint {
	var pts []GridPoint
	coeff := 1 / (sigma * math.Sqrt(2*math.Pi))
	n := int(math.Round((max-min)/step)) + 1
	for i := 0; i < n; i++ {
		theta := round10(min + float64(i)*step)
		z := (theta - mu) / sigma
		density := coeff * math.Exp(-0.5*z*z)
		pts = append(pts, GridPoint{Theta: theta, Prob: density})
	}
	return pts
}

// UniformGrid emits equal nonzero mass to every cell with
// minSupport <= θ <= maxSupport, and zero elsewhere. The nonzero cells
// sum to exactly 1.
func UniformGrid(minSupport, maxSupport, min, max float64) []GridPoint {
	return uniformGridStep(minSupport, maxSupport, min, max, gridStep)
}

func uniformGridStep(minSupport, maxSupport, min, max, step float64) []GridPoint {
	n := int(math.Round((max-min)/step)) + 1
	nonzero := 0
	thetas := make([]float64, n)
	inSupport := make([]bool, n)
	for i := 0; i < n; i++ {
		theta := round10(min + float64(i)*step)
		thetas[i] = theta
		if theta >= minSupport && theta <= maxSupport {
			inSupport[i] = true
			nonzero++
		}
	}

	pts := make([]GridPoint, n)
	var mass float64
	if nonzero > 0 {
		mass = 1.0 / float64(nonzero)
	}
	for i := 0; i < n; i++ {
		p := 0.0
		if inSupport[i] {
			p = mass
		}
		pts[i] = GridPoint{Theta: thetas[i], Prob: p}
	}
	return pts
}
