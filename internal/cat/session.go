package cat

import (
	"math"

	"github.com/adaptivecat/engine/internal/estimate"
	"github.com/adaptivecat/engine/internal/irt"
	"github.com/adaptivecat/engine/internal/selector"
)

// CatOptions configures a single-construct CAT session. Method,
// Selector, and StartSelector are parsed case-insensitively once, at
// construction time.
type CatOptions struct {
	Method   string // "mle" or "eap"
	Selector string // "mfi", "closest", "random", "fixed", "middle"

	ThetaMin, ThetaMax float64 // default [-6, 6] if both zero

	// EAP-only prior configuration.
	PriorDist   string // "norm" or "unif"
	PriorParams []float64

	// Non-adaptive start-up policy.
	NStartItems   int
	StartSelector string // "random", "middle", or "fixed"

	// Seed drives both "random" selection and "middle"'s jitter, for
	// reproducibility.
	Seed int64
}

// Session is the per-construct state of a CAT run: estimation method,
// selector, θ-bounds, current θ/SE, and administered history.
type Session struct {
	method   Method
	selector selector.Selector
	startup  selector.StartupPolicy

	thetaMin, thetaMax float64

	prior     PriorDist
	hasPrior  bool

	theta float64
	se    float64

	params    []irt.Params
	responses []int
}

// NewSession validates opts and returns a fresh session with empty
// history, θ=0, and SE=+∞.
func NewSession(opts CatOptions) (*Session, error) {
	method, err := parseMethod(opts.Method)
	if err != nil {
		return nil, err
	}

	selKind, err := parseSelectorKind(opts.Selector)
	if err != nil {
		return nil, err
	}

	thetaMin, thetaMax := opts.ThetaMin, opts.ThetaMax
	if thetaMin == 0 && thetaMax == 0 {
		thetaMin, thetaMax = -6, 6
	}

	s := &Session{
		method:    method,
		thetaMin:  thetaMin,
		thetaMax:  thetaMax,
		theta:     0,
		se:        math.Inf(1),
		params:    []irt.Params{},
		responses: []int{},
	}

	s.selector = buildSelector(selKind, opts.NStartItems, opts.Seed)

	if method == MethodEAP {
		prior, err := parsePrior(opts.PriorDist, opts.PriorParams, thetaMin, thetaMax)
		if err != nil {
			return nil, err
		}
		s.prior = prior
		s.hasPrior = true
	}

	if opts.StartSelector != "" {
		startKind, err := parseSelectorKind(opts.StartSelector)
		if err != nil {
			return nil, err
		}
		s.startup = selector.StartupPolicy{
			NStartItems:   opts.NStartItems,
			StartSelector: buildSelector(startKind, opts.NStartItems, opts.Seed),
		}
	} else {
		s.startup = selector.StartupPolicy{NStartItems: opts.NStartItems}
	}

	return s, nil
}

// Update appends one (params, response) pair and recomputes θ/SE.
func (s *Session) Update(params irt.Params, response int) {
	s.UpdateMany([]irt.Params{params}, []int{response})
}

// UpdateMany appends a batch of (params, response) pairs and
// recomputes θ/SE once over the full history. It fails with
// ArgumentMismatch if the two slices differ in length.
func (s *Session) UpdateMany(params []irt.Params, responses []int) error {
	if len(params) != len(responses) {
		return newArgumentMismatch("params has %d elements, responses has %d", len(params), len(responses))
	}

	s.params = append(s.params, params...)
	s.responses = append(s.responses, responses...)

	s.recompute()
	return nil
}

func (s *Session) recompute() {
	bounds := estimate.Bounds{Min: s.thetaMin, Max: s.thetaMax}

	var theta, se float64
	switch s.method {
	case MethodEAP:
		grid := s.prior.grid(s.thetaMin, s.thetaMax)
		theta, se = estimate.EAP(bounds, grid, s.params, s.responses)
	default:
		theta, se = estimate.MLE(bounds, s.params, s.responses)
	}

	s.theta = theta
	s.se = se
}

// FindNext picks the next item from pool. The start-up policy takes
// precedence for as long as its opening window is active — an override
// only replaces the session's configured selector once that window has
// closed, so a caller-supplied override can't be used to skip past a
// non-adaptive start-up run.
func (s *Session) FindNext(pool []selector.Item, override selector.Selector) (*selector.Item, []selector.Item) {
	inStartup := s.NItems() < s.startup.NStartItems && s.startup.StartSelector != nil
	sel := s.startup.Apply(s.NItems(), s.selector)
	if override != nil && !inStartup {
		sel = override
	}
	return sel.Select(s.theta, pool)
}

// NItems returns the number of responses administered so far.
func (s *Session) NItems() int {
	return len(s.responses)
}

// Theta returns the current ability point estimate.
func (s *Session) Theta() float64 {
	return s.theta
}

// SE returns the current standard error (may be +Inf).
func (s *Session) SE() float64 {
	return s.se
}
