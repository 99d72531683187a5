// Package optimize implements a bracketed single-variable minimizer used
// by the MLE ability estimator: bracket a minimum from a starting guess,
// then refine it with a Brent-style combination of parabolic
// interpolation and golden-section search.
package optimize

import "math"

const (
	tolerance     = 1e-8
	maxIterations = 200

	// goldenRatio is (3 - √5) / 2, the golden-section step fraction.
	goldenRatio = 0.3819660112501051
)

// Bracket finds a triple (lo, mid, hi) such that f(mid) <= f(lo) and
// f(mid) <= f(hi), starting the search from x0.
//
// It first checks x0-1, x0, x0+1. If f is decreasing away from x0 in
// one direction it keeps doubling the step in that direction until the
// outer point's value exceeds the middle one.
func Bracket(f func(float64) float64, x0 float64) (lo, mid, hi float64) {
	fx0 := f(x0)
	fxPlus := f(x0 + 1)

	if fxPlus <= fx0 {
		// Expand to the right.
		a, b := x0, x0+1
		fa, fb := fx0, fxPlus
		step := 1.0
		for {
			step *= 2
			c := b + step
			fc := f(c)
			if fc > fb {
				return a, b, c
			}
			a, fa = b, fb
			b, fb = c, fc
			_ = fa
		}
	}

	fxMinus := f(x0 - 1)
	if fxMinus >= fx0 {
		// x0 is already the smallest of the initial triple.
		return x0 - 1, x0, x0 + 1
	}

	// Expand to the left.
	a, b := x0, x0-1
	fa, fb := fx0, fxMinus
	step := 1.0
	for {
		step *= 2
		c := b - step
		fc := f(c)
		if fc > fb {
			// Bracket is (c, b, a) in ascending order.
			return c, b, a
		}
		a, fa = b, fb
		b, fb = c, fc
		_ = fa
	}
}

// Minimize brackets a minimum from x0 and refines it via Brent's method,
// returning the minimizing point and f's value there. It runs at most
// maxIterations refinement steps and converges when the bracket width
// is within tolerance.
func Minimize(f func(float64) float64, x0 float64) (x, fx float64) {
	a, b, c := Bracket(f, x0)
	if a > c {
		a, c = c, a
	}

	// x, w, v: best, second-best, and previous second-best points.
	x = b
	fx = f(x)
	w, v := x, x
	fw, fv := fx, fx

	d, e := 0.0, 0.0

	for iter := 0; iter < maxIterations; iter++ {
		mid := 0.5 * (a + c)
		tol1 := tolerance*math.Abs(x) + 1e-12
		tol2 := 2 * tol1

		if math.Abs(x-mid) <= tol2-0.5*(c-a) {
			break
		}

		useGolden := true
		var u float64

		if math.Abs(e) > tol1 {
			// Try a parabolic fit through (x,fx), (w,fw), (v,fv).
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q2 := 2 * (q - r)
			if q2 > 0 {
				p = -p
			}
			q2 = math.Abs(q2)
			etemp := e
			e = d

			if q2 != 0 && math.Abs(p) < math.Abs(0.5*q2*etemp) &&
				p > q2*(a-x) && p < q2*(c-x) {
				d = p / q2
				u = x + d
				if u-a < tol2 || c-u < tol2 {
					d = sign(tol1, mid-x)
					u = x + d
				}
				useGolden = false
			}
		}

		if useGolden {
			if x < mid {
				e = c - x
			} else {
				e = a - x
			}
			d = goldenRatio * e
			u = x + d
		}

		var ru float64
		if math.Abs(d) >= tol1 {
			ru = u
		} else {
			ru = x + sign(tol1, d)
		}
		fu := f(ru)

		if fu <= fx {
			if ru >= x {
				a = x
			} else {
				c = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = ru, fu
		} else {
			if ru < x {
				a = ru
			} else {
				c = ru
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = ru, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = ru, fu
			}
		}
	}

	return x, fx
}

func sign(magnitude, direction float64) float64 {
	if direction >= 0 {
		return math.Abs(magnitude)
	}
	return -math.Abs(magnitude)
}
