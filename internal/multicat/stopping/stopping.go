// Package stopping implements early-stopping controllers for a
// multi-construct CAT run: StopAfterNItems, StopOnSEPlateau, and
// StopIfSEBelowThreshold, each composed across constructs with a
// boolean operator (and/or/only).
package stopping

import "github.com/adaptivecat/engine/internal/caterr"

// Operator combines the per-construct boolean results of a stopping
// controller into a single fire/don't-fire decision.
type Operator string

const (
	Or   Operator = "or"
	And  Operator = "and"
	Only Operator = "only"
)

// Snapshot is the piece of per-construct cat.Session state a stopping
// controller needs: how many items have been administered, and the
// current standard error.
type Snapshot struct {
	NItems int
	SE     float64
}

// Controller is the capability every stopping rule implements.
type Controller interface {
	// Update records the latest per-construct snapshots. Called once
	// per update_and_select batch, excluding the "unvalidated" session.
	Update(sessions map[string]Snapshot)

	// Fire evaluates whether the configured stop condition currently
	// holds, combining per-construct predicates with the configured
	// operator. evaluateCat is only consulted (and required) for the
	// Only operator.
	Fire(evaluateCat string) (bool, error)
}

// combine applies op over a set of per-construct boolean predicates.
func combine(op Operator, results map[string]bool, evaluateCat string) (bool, error) {
	switch op {
	case Or:
		for _, v := range results {
			if v {
				return true, nil
			}
		}
		return false, nil
	case And:
		if len(results) == 0 {
			return false, nil
		}
		for _, v := range results {
			if !v {
				return false, nil
			}
		}
		return true, nil
	case Only:
		if evaluateCat == "" {
			return false, caterr.New(caterr.InvalidOperator, "operator \"only\" requires cat_to_evaluate_early_stopping")
		}
		return results[evaluateCat], nil
	default:
		return false, caterr.New(caterr.InvalidOperator, "unknown logical operator %q, want \"and\", \"or\", or \"only\"", op)
	}
}
