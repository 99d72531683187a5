package cat

import (
	"strings"

	"github.com/adaptivecat/engine/internal/irt"
	"github.com/adaptivecat/engine/internal/selector"
)

// Method is the ability estimator a session uses.
type Method int

const (
	MethodMLE Method = iota
	MethodEAP
)

func parseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "mle":
		return MethodMLE, nil
	case "eap":
		return MethodEAP, nil
	default:
		return 0, newInvalidConfig("unknown estimation method %q", s)
	}
}

// SelectorKind is a parsed, case-insensitive selector label.
type SelectorKind int

const (
	SelectorMFI SelectorKind = iota
	SelectorClosest
	SelectorRandom
	SelectorFixed
	SelectorMiddle
)

func parseSelectorKind(s string) (SelectorKind, error) {
	switch strings.ToLower(s) {
	case "mfi":
		return SelectorMFI, nil
	case "closest":
		return SelectorClosest, nil
	case "random":
		return SelectorRandom, nil
	case "fixed":
		return SelectorFixed, nil
	case "middle":
		return SelectorMiddle, nil
	default:
		return 0, newInvalidConfig("unknown selector %q", s)
	}
}

// buildSelector turns a parsed SelectorKind into a concrete
// selector.Selector. nStart and seed matter only for "middle"/"random".
func buildSelector(kind SelectorKind, nStart int, seed int64) selector.Selector {
	switch kind {
	case SelectorMFI:
		return selector.MFI{}
	case SelectorClosest:
		return selector.Closest{}
	case SelectorRandom:
		return selector.NewRandom(seed)
	case SelectorFixed:
		return selector.Fixed{}
	case SelectorMiddle:
		return selector.NewMiddle(nStart, seed)
	default:
		return selector.MFI{}
	}
}

// PriorDist is a parsed EAP prior distribution.
type PriorDist struct {
	IsUniform bool
	Mu, Sigma float64 // normal
	Min, Max  float64 // uniform (support bounds)
}

// parsePrior validates and builds a PriorDist from its string label and
// two-element parameter vector.
func parsePrior(label string, params []float64, thetaMin, thetaMax float64) (PriorDist, error) {
	if len(params) != 2 {
		return PriorDist{}, newInvalidConfig("prior parameters must have exactly 2 elements, got %d", len(params))
	}

	switch strings.ToLower(label) {
	case "norm":
		mu, sigma := params[0], params[1]
		if sigma <= 0 {
			return PriorDist{}, newInvalidConfig("normal prior sigma must be > 0, got %f", sigma)
		}
		if mu < thetaMin || mu > thetaMax {
			return PriorDist{}, newInvalidConfig("normal prior mean %f outside bounds [%f,%f]", mu, thetaMin, thetaMax)
		}
		return PriorDist{IsUniform: false, Mu: mu, Sigma: sigma}, nil
	case "unif":
		minS, maxS := params[0], params[1]
		if minS >= maxS {
			return PriorDist{}, newInvalidConfig("uniform prior requires minSupport < maxSupport, got [%f,%f]", minS, maxS)
		}
		if minS < thetaMin || maxS > thetaMax {
			return PriorDist{}, newInvalidConfig("uniform prior support [%f,%f] outside bounds [%f,%f]", minS, maxS, thetaMin, thetaMax)
		}
		return PriorDist{IsUniform: true, Min: minS, Max: maxS}, nil
	default:
		return PriorDist{}, newInvalidConfig("unknown prior distribution %q, want \"norm\" or \"unif\"", label)
	}
}

// grid materializes the discrete prior over [thetaMin, thetaMax].
func (p PriorDist) grid(thetaMin, thetaMax float64) []irt.GridPoint {
	if p.IsUniform {
		return irt.UniformGrid(p.Min, p.Max, thetaMin, thetaMax)
	}
	return irt.NormalGrid(p.Mu, p.Sigma, thetaMin, thetaMax)
}
