package multicat

// ReviewFlag classifies how a construct's measurement precision moved
// across an early-stopping call: a three-way split (diverging/flagged/
// passed) applied to SE trend instead of a composite quality score.
type ReviewFlag string

const (
	// ReviewPassed means SE improved (or held steady) since the last
	// call — the plateau/threshold rule fired on genuine convergence.
	ReviewPassed ReviewFlag = "passed"
	// ReviewFlagged means SE neither improved nor worsened meaningfully
	// — a real plateau, but not distinguishable from noise without a
	// human look.
	ReviewFlagged ReviewFlag = "flagged"
	// ReviewDiverging means SE got worse since the last call even
	// though the stopping rule fired — the construct's estimate is
	// moving in the wrong direction and should not be accepted as-is.
	ReviewDiverging ReviewFlag = "diverging"
)

// defaultReviewTolerance is the SE delta, in either direction, treated
// as noise rather than genuine movement.
const defaultReviewTolerance = 0.01

// Reviewer wraps a Controller to additionally classify each
// construct's convergence whenever early stopping fires, so a caller
// can gate acceptance of a stopped session behind human review instead
// of trusting the stopping rule blindly.
type Reviewer struct {
	ctrl      *Controller
	tolerance float64
	prevSE    map[string]float64
}

// NewReviewer wraps ctrl. tolerance defaults to 0.01 when zero.
func NewReviewer(ctrl *Controller, tolerance float64) *Reviewer {
	if tolerance == 0 {
		tolerance = defaultReviewTolerance
	}
	return &Reviewer{ctrl: ctrl, tolerance: tolerance, prevSE: map[string]float64{}}
}

// UpdateAndSelect delegates to Controller.UpdateAndSelect and, only
// when that call's StoppingReason indicates the configured stopping
// rule fired, additionally returns a ReviewFlag per construct
// classifying whether its SE was still moving in the right direction.
// flags is nil whenever early stopping did not fire this call.
func (r *Reviewer) UpdateAndSelect(opts UpdateAndSelectOptions) (state State, stimulus *Stimulus, flags map[string]ReviewFlag, err error) {
	state, stimulus, err = r.ctrl.UpdateAndSelect(opts)
	if err != nil {
		return state, stimulus, nil, err
	}

	if state.StoppingReason == earlyStoppingReason {
		flags = make(map[string]ReviewFlag, len(state.SEs))
		for name, se := range state.SEs {
			if name == unvalidatedCat {
				continue
			}
			flags[name] = classifyConvergence(r.prevSE[name], se, r.tolerance)
		}
	}

	for name, se := range state.SEs {
		r.prevSE[name] = se
	}
	return state, stimulus, flags, nil
}

// classifyConvergence buckets the change from previousSE to currentSE
// into three ranges around a pair of thresholds, here both set by
// tolerance.
func classifyConvergence(previousSE, currentSE, tolerance float64) ReviewFlag {
	delta := currentSE - previousSE
	switch {
	case delta > tolerance:
		return ReviewDiverging
	case delta < -tolerance:
		return ReviewPassed
	default:
		return ReviewFlagged
	}
}
