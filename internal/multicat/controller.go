// Package multicat drives several single-construct CAT sessions
// (internal/cat) over one shared multi-zeta item pool, routing batches
// of responses into the right sessions and selecting the next item
// for whichever construct the caller names.
package multicat

import (
	"fmt"
	"math/rand"

	"github.com/adaptivecat/engine/internal/cat"
	"github.com/adaptivecat/engine/internal/caterr"
	"github.com/adaptivecat/engine/internal/irt"
	"github.com/adaptivecat/engine/internal/multicat/stopping"
	"github.com/adaptivecat/engine/internal/selector"
)

// unvalidatedCat is the name of the always-present session that
// absorbs items calibrated for no construct.
const unvalidatedCat = "unvalidated"

// earlyStoppingReason is the StoppingReason text set when the
// configured stopping.Controller fires. review.go matches against it
// to decide whether a construct's convergence needs a human look.
const earlyStoppingReason = "Early stopping"

// ZetaTuple is one set of IRT parameters within a multi-zeta stimulus,
// tagged with the constructs it's calibrated for. An empty Cats list
// marks the tuple as not calibrated for any construct.
type ZetaTuple struct {
	Params irt.Params
	Cats   []string
}

// Stimulus is a multi-zeta item: a stable ID, the caller's metadata,
// and one ζ tuple per construct it's calibrated for. Lookups and
// pool membership are keyed by ID, never by structural equality.
type Stimulus struct {
	ID       any
	Zetas    []ZetaTuple
	Metadata any
}

// isUnvalidated reports whether s carries no ζ tuple calibrated for
// any construct.
func (s Stimulus) isUnvalidated() bool {
	if len(s.Zetas) == 0 {
		return true
	}
	for _, z := range s.Zetas {
		if len(z.Cats) > 0 {
			return false
		}
	}
	return true
}

// zetaFor returns the ζ tuple calibrated for catName, if any.
func (s Stimulus) zetaFor(catName string) (ZetaTuple, bool) {
	for _, z := range s.Zetas {
		for _, c := range z.Cats {
			if c == catName {
				return z, true
			}
		}
	}
	return ZetaTuple{}, false
}

// isAvailable unifies the two availability rules of the selection
// branch: a normal construct needs a calibrated ζ tuple naming it, the
// unvalidated construct needs the absence of any calibrated tuple.
func isAvailable(s Stimulus, catName string) bool {
	if catName == unvalidatedCat {
		return s.isUnvalidated()
	}
	_, ok := s.zetaFor(catName)
	return ok
}

// State is the snapshot of per-construct readouts and the current
// stopping reason returned alongside every UpdateAndSelect call.
type State struct {
	Thetas         map[string]float64
	SEs            map[string]float64
	NItems         map[string]int
	StoppingReason string
}

// Controller owns one cat.Session per construct (plus "unvalidated"),
// the shared remaining/seen item pools, and an optional stopping
// controller.
type Controller struct {
	sessions  map[string]*cat.Session
	byID      map[any]Stimulus
	remaining []any // stimulus IDs
	seen      []any

	stoppingCtrl stopping.Controller
	rng          *rand.Rand
}

// NewController validates the corpus (no cat name repeated within one
// stimulus) and builds one session per name in sessionOpts, plus the
// always-present "unvalidated" session.
func NewController(corpus []Stimulus, sessionOpts map[string]cat.CatOptions, stoppingCtrl stopping.Controller, seed int64) (*Controller, error) {
	byID := make(map[any]Stimulus, len(corpus))
	remaining := make([]any, 0, len(corpus))
	for _, s := range corpus {
		if err := checkNoDuplicateCats(s); err != nil {
			return nil, err
		}
		byID[s.ID] = s
		remaining = append(remaining, s.ID)
	}

	sessions := make(map[string]*cat.Session, len(sessionOpts)+1)
	for name, opts := range sessionOpts {
		sess, err := cat.NewSession(opts)
		if err != nil {
			return nil, err
		}
		sessions[name] = sess
	}
	unvalidatedSession, err := cat.NewSession(cat.CatOptions{Method: "mle", Selector: "random", Seed: seed})
	if err != nil {
		return nil, err
	}
	sessions[unvalidatedCat] = unvalidatedSession

	return &Controller{
		sessions:     sessions,
		byID:         byID,
		remaining:    remaining,
		stoppingCtrl: stoppingCtrl,
		rng:          rand.New(rand.NewSource(seed)),
	}, nil
}

func checkNoDuplicateCats(s Stimulus) error {
	seen := map[string]bool{}
	for _, z := range s.Zetas {
		for _, c := range z.Cats {
			if seen[c] {
				return caterr.New(caterr.DuplicateCatName, "cat %q appears in more than one ζ tuple of stimulus %v", c, s.ID)
			}
			seen[c] = true
		}
	}
	return nil
}

func (c *Controller) knowsCat(name string) bool {
	_, ok := c.sessions[name]
	return ok
}

// UpdateAndSelectOptions configures a single update_and_select call.
type UpdateAndSelectOptions struct {
	CatToSelect string
	CatsToUpdate []string

	Items   []Stimulus
	Answers []int

	SelectorOverride selector.Selector

	CorpusToSelectFrom         string
	CatToEvaluateEarlyStopping string

	// ReturnUndefinedOnExhaustion defaults to true when nil.
	ReturnUndefinedOnExhaustion *bool
}

func (o UpdateAndSelectOptions) returnUndefinedOnExhaustion() bool {
	if o.ReturnUndefinedOnExhaustion == nil {
		return true
	}
	return *o.ReturnUndefinedOnExhaustion
}

// UpdateAndSelect implements the six-step contract of the multi-CAT
// controller: route a response batch into the named sessions, check
// early stopping, then select the next stimulus for cat_to_select.
func (c *Controller) UpdateAndSelect(opts UpdateAndSelectOptions) (State, *Stimulus, error) {
	if len(opts.Items) != len(opts.Answers) {
		return c.state(""), nil, caterr.New(caterr.ArgumentMismatch, "items has %d elements, answers has %d", len(opts.Items), len(opts.Answers))
	}

	if !c.knowsCat(opts.CatToSelect) {
		return c.state(""), nil, caterr.New(caterr.UnknownCat, "unknown cat_to_select %q", opts.CatToSelect)
	}
	if opts.CorpusToSelectFrom != "" && !c.knowsCat(opts.CorpusToSelectFrom) {
		return c.state(""), nil, caterr.New(caterr.UnknownCat, "unknown corpus_to_select_from %q", opts.CorpusToSelectFrom)
	}
	for _, name := range opts.CatsToUpdate {
		if name == unvalidatedCat || !c.knowsCat(name) {
			return c.state(""), nil, caterr.New(caterr.UnknownCat, "unknown cat in cats_to_update %q", name)
		}
	}

	c.applyBatch(opts.Items, opts.Answers, opts.CatsToUpdate)

	if c.stoppingCtrl != nil {
		fire, err := c.evaluateStopping(opts.CatToEvaluateEarlyStopping)
		if err != nil {
			return c.state(""), nil, err
		}
		if fire {
			return c.state(earlyStoppingReason), nil, nil
		}
	}

	candidates, missing := c.partitionRemaining(opts.CorpusToSelectFrom, opts.CatToSelect)

	if opts.CatToSelect == unvalidatedCat {
		if len(candidates) > 0 {
			chosen := candidates[c.rng.Intn(len(candidates))]
			return c.state(""), &chosen, nil
		}
		if opts.returnUndefinedOnExhaustion() {
			return c.state("No unvalidated items remaining"), nil, nil
		}
		if len(missing) == 0 {
			return c.state("No unvalidated items remaining"), nil, nil
		}
		chosen := missing[c.rng.Intn(len(missing))]
		return c.state(""), &chosen, nil
	}

	if len(candidates) > 0 {
		flat := make([]selector.Item, len(candidates))
		for i, s := range candidates {
			z, _ := s.zetaFor(opts.CatToSelect)
			flat[i] = selector.Item{ID: s.ID, Params: z.Params}
		}
		sess := c.sessions[opts.CatToSelect]
		chosenFlat, _ := sess.FindNext(flat, opts.SelectorOverride)
		if chosenFlat == nil {
			return c.state(""), nil, nil
		}
		chosen := c.byID[chosenFlat.ID]
		return c.state(""), &chosen, nil
	}

	reason := fmt.Sprintf("No validated items remaining for the requested corpus %s", opts.CatToSelect)
	if opts.returnUndefinedOnExhaustion() || len(missing) == 0 {
		return c.state(reason), nil, nil
	}
	chosen := missing[c.rng.Intn(len(missing))]
	return c.state(""), &chosen, nil
}

// applyBatch implements step 3: move each (item, answer) from
// remaining to seen, and queue it into every named construct's batch
// when the item carries a ζ tuple calibrated for that construct.
func (c *Controller) applyBatch(items []Stimulus, answers []int, catsToUpdate []string) {
	batchParams := make(map[string][]irt.Params, len(catsToUpdate))
	batchResponses := make(map[string][]int, len(catsToUpdate))

	for i, item := range items {
		c.markSeen(item.ID)

		for _, name := range catsToUpdate {
			z, ok := item.zetaFor(name)
			if !ok {
				continue
			}
			batchParams[name] = append(batchParams[name], z.Params)
			batchResponses[name] = append(batchResponses[name], answers[i])
		}
	}

	for name, params := range batchParams {
		c.sessions[name].UpdateMany(params, batchResponses[name])
	}
}

func (c *Controller) markSeen(id any) {
	for i, rid := range c.remaining {
		if rid == id {
			c.remaining = append(c.remaining[:i], c.remaining[i+1:]...)
			break
		}
	}
	c.seen = append(c.seen, id)
}

// evaluateStopping feeds the stopping controller every session except
// "unvalidated" (step 4).
func (c *Controller) evaluateStopping(evaluateCat string) (bool, error) {
	snapshot := make(map[string]stopping.Snapshot, len(c.sessions)-1)
	for name, sess := range c.sessions {
		if name == unvalidatedCat {
			continue
		}
		snapshot[name] = stopping.Snapshot{NItems: sess.NItems(), SE: sess.SE()}
	}
	c.stoppingCtrl.Update(snapshot)
	return c.stoppingCtrl.Fire(evaluateCat)
}

// partitionRemaining implements step 5: filter the remaining pool by
// availability for corpusToSelectFrom (if any) and then catToSelect,
// returning the intersection and everything that failed either filter.
func (c *Controller) partitionRemaining(corpusToSelectFrom, catToSelect string) (candidates, missing []Stimulus) {
	for _, id := range c.remaining {
		s := c.byID[id]
		if corpusToSelectFrom != "" && !isAvailable(s, corpusToSelectFrom) {
			missing = append(missing, s)
			continue
		}
		if !isAvailable(s, catToSelect) {
			missing = append(missing, s)
			continue
		}
		candidates = append(candidates, s)
	}
	return candidates, missing
}

func (c *Controller) state(reason string) State {
	return State{
		Thetas:         c.Thetas(),
		SEs:            c.SEMeasurements(),
		NItems:         c.NItemsPerCat(),
		StoppingReason: reason,
	}
}

// Thetas returns the current ability estimate for every construct.
func (c *Controller) Thetas() map[string]float64 {
	out := make(map[string]float64, len(c.sessions))
	for name, sess := range c.sessions {
		out[name] = sess.Theta()
	}
	return out
}

// SEMeasurements returns the current standard error for every
// construct.
func (c *Controller) SEMeasurements() map[string]float64 {
	out := make(map[string]float64, len(c.sessions))
	for name, sess := range c.sessions {
		out[name] = sess.SE()
	}
	return out
}

// NItemsPerCat returns the administered item count for every
// construct.
func (c *Controller) NItemsPerCat() map[string]int {
	out := make(map[string]int, len(c.sessions))
	for name, sess := range c.sessions {
		out[name] = sess.NItems()
	}
	return out
}

// SeenCount and RemainingCount support the "|seen|+|remaining| = |corpus|"
// controller invariant in tests.
func (c *Controller) SeenCount() int      { return len(c.seen) }
func (c *Controller) RemainingCount() int { return len(c.remaining) }

// SeenIDs and RemainingIDs expose the pool partition for snapshot
// persistence (internal/catstore).
func (c *Controller) SeenIDs() []any      { return append([]any{}, c.seen...) }
func (c *Controller) RemainingIDs() []any { return append([]any{}, c.remaining...) }
