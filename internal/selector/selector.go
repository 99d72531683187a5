// Package selector implements the item-selection strategies: maximum
// Fisher information, closest-to-target, random, fixed, and middle,
// plus the non-adaptive start-up policy that overrides them for an
// opening run of items.
package selector

import (
	"math/rand"
	"sort"

	"github.com/adaptivecat/engine/internal/irt"
)

// Item is one candidate for selection: its IRT parameters plus an
// opaque identity the caller threads through untouched.
type Item struct {
	ID     any
	Params irt.Params
}

// Selector picks one item from a pool given the current ability
// estimate. Empty input yields (nil, nil).
type Selector interface {
	Select(theta float64, pool []Item) (chosen *Item, rest []Item)
}

func sortedByDifficulty(pool []Item) []Item {
	sorted := make([]Item, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Params.B < sorted[j].Params.B
	})
	return sorted
}

func without(pool []Item, idx int) []Item {
	rest := make([]Item, 0, len(pool)-1)
	rest = append(rest, pool[:idx]...)
	rest = append(rest, pool[idx+1:]...)
	return rest
}

// MFI selects the pool item with the greatest Fisher information at
// theta. The remainder is sorted ascending by difficulty.
type MFI struct{}

func (MFI) Select(theta float64, pool []Item) (*Item, []Item) {
	if len(pool) == 0 {
		return nil, nil
	}

	bestIdx := 0
	bestInfo := irt.Information(theta, pool[0].Params)
	for i := 1; i < len(pool); i++ {
		info := irt.Information(theta, pool[i].Params)
		if info > bestInfo {
			bestInfo = info
			bestIdx = i
		}
	}

	chosen := pool[bestIdx]
	rest := sortedByDifficulty(without(pool, bestIdx))
	return &chosen, rest
}

// closestOffset is added to theta before finding the item nearest in
// difficulty: targets θ + 0.481 rather than θ itself.
const closestOffset = 0.481

// Closest sorts the pool ascending by difficulty and picks the item
// nearest theta+0.481, ties going to the lower-difficulty item.
type Closest struct{}

func (Closest) Select(theta float64, pool []Item) (*Item, []Item) {
	if len(pool) == 0 {
		return nil, nil
	}

	sorted := sortedByDifficulty(pool)
	difficulties := make([]float64, len(sorted))
	for i, it := range sorted {
		difficulties[i] = it.Params.B
	}

	idx := irt.ClosestIndex(difficulties, theta+closestOffset)
	chosen := sorted[idx]
	rest := without(sorted, idx)
	return &chosen, rest
}

// Random uniformly picks one item from the pool, using its own
// deterministic source seeded at construction for reproducibility.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random selector seeded deterministically.
func NewRandom(seed int64) Random {
	return Random{rng: rand.New(rand.NewSource(seed))}
}

func (r Random) Select(_ float64, pool []Item) (*Item, []Item) {
	if len(pool) == 0 {
		return nil, nil
	}
	idx := r.rng.Intn(len(pool))
	chosen := pool[idx]
	return &chosen, without(pool, idx)
}

// Fixed always picks the first item in input order.
type Fixed struct{}

func (Fixed) Select(_ float64, pool []Item) (*Item, []Item) {
	if len(pool) == 0 {
		return nil, nil
	}
	chosen := pool[0]
	return &chosen, without(pool, 0)
}

// Middle picks index floor(n/2) + delta, where delta is a uniform
// integer in [-floor(k/2), floor(k/2)] when the pool has at least k
// items (k being the configured start-item count), clamped to
// [0, n-1]. Below k items, delta is always 0.
type Middle struct {
	K   int
	rng *rand.Rand
}

// NewMiddle returns a Middle selector with start-count k, seeded
// deterministically.
func NewMiddle(k int, seed int64) Middle {
	return Middle{K: k, rng: rand.New(rand.NewSource(seed))}
}

func (m Middle) Select(_ float64, pool []Item) (*Item, []Item) {
	n := len(pool)
	if n == 0 {
		return nil, nil
	}

	idx := n / 2
	if n >= m.K {
		half := m.K / 2
		if half > 0 {
			delta := m.rng.Intn(2*half+1) - half
			idx += delta
		}
	}
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}

	chosen := pool[idx]
	return &chosen, without(pool, idx)
}

// StartupPolicy overrides the configured selector with StartSelector
// while fewer than NStartItems responses have been administered.
type StartupPolicy struct {
	NStartItems   int
	StartSelector Selector
}

// Apply returns the selector that should run given how many responses
// have already been administered: StartSelector during start-up, or
// normal otherwise.
func (p StartupPolicy) Apply(nAdministered int, normal Selector) Selector {
	if nAdministered < p.NStartItems && p.StartSelector != nil {
		return p.StartSelector
	}
	return normal
}
