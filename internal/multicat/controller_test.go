package multicat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivecat/engine/internal/cat"
	"github.com/adaptivecat/engine/internal/irt"
	"github.com/adaptivecat/engine/internal/multicat/stopping"
)

func defaultOpts() map[string]cat.CatOptions {
	return map[string]cat.CatOptions{
		"reading": {Method: "mle", Selector: "mfi"},
		"math":    {Method: "mle", Selector: "mfi"},
	}
}

func threeItemPool() []Stimulus {
	return []Stimulus{
		{ID: "item0", Zetas: []ZetaTuple{
			{Params: irt.Params{A: 1, B: -1, C: 0, D: 1}, Cats: []string{"reading"}},
		}},
		{ID: "item1", Zetas: []ZetaTuple{
			{Params: irt.Params{A: 1, B: 0, C: 0, D: 1}, Cats: []string{"reading"}},
			{Params: irt.Params{A: 1, B: 0.5, C: 0, D: 1}, Cats: []string{"math"}},
		}},
		{ID: "item2", Zetas: []ZetaTuple{
			{Params: irt.Params{A: 1, B: 1, C: 0, D: 1}, Cats: []string{"reading"}},
		}},
	}
}

func TestNewControllerRejectsDuplicateCatName(t *testing.T) {
	corpus := []Stimulus{
		{ID: "bad", Zetas: []ZetaTuple{
			{Params: irt.Params{A: 1, B: 0, C: 0, D: 1}, Cats: []string{"reading"}},
			{Params: irt.Params{A: 1, B: 0.2, C: 0, D: 1}, Cats: []string{"reading"}},
		}},
	}
	_, err := NewController(corpus, defaultOpts(), nil, 1)
	require.Error(t, err)
}

func TestUpdateAndSelectUnknownCatToSelect(t *testing.T) {
	ctrl, err := NewController(threeItemPool(), defaultOpts(), nil, 1)
	require.NoError(t, err)

	_, _, err = ctrl.UpdateAndSelect(UpdateAndSelectOptions{CatToSelect: "bogus"})
	require.Error(t, err)
}

func TestUpdateAndSelectRejectsUnvalidatedInCatsToUpdate(t *testing.T) {
	ctrl, err := NewController(threeItemPool(), defaultOpts(), nil, 1)
	require.NoError(t, err)

	_, _, err = ctrl.UpdateAndSelect(UpdateAndSelectOptions{
		CatToSelect:  "reading",
		CatsToUpdate: []string{"unvalidated"},
	})
	require.Error(t, err)
}

// Scenario 6 of the end-to-end test catalog: a 3-item pool over two
// constructs; one batch of (item0, 1) shrinks the pool to 2, and the
// next selected item is not item0.
func TestMultiCATThreeItemPoolScenario(t *testing.T) {
	pool := threeItemPool()
	ctrl, err := NewController(pool, defaultOpts(), nil, 1)
	require.NoError(t, err)

	state, chosen, err := ctrl.UpdateAndSelect(UpdateAndSelectOptions{
		CatToSelect:  "reading",
		CatsToUpdate: []string{"reading"},
		Items:        []Stimulus{pool[0]},
		Answers:      []int{1},
	})
	require.NoError(t, err)
	require.NotNil(t, chosen)
	require.NotEqual(t, "item0", chosen.ID)
	require.Equal(t, 2, ctrl.RemainingCount())
	require.Equal(t, 1, ctrl.SeenCount())
	require.Equal(t, 1, state.NItems["reading"])
}

func TestControllerInvariantSeenPlusRemainingEqualsCorpus(t *testing.T) {
	pool := threeItemPool()
	ctrl, err := NewController(pool, defaultOpts(), nil, 1)
	require.NoError(t, err)

	for i := 0; i < len(pool); i++ {
		require.Equal(t, len(pool), ctrl.SeenCount()+ctrl.RemainingCount())
		_, _, err := ctrl.UpdateAndSelect(UpdateAndSelectOptions{
			CatToSelect:  "reading",
			CatsToUpdate: []string{"reading"},
			Items:        []Stimulus{pool[i]},
			Answers:      []int{1},
		})
		require.NoError(t, err)
	}
	require.Equal(t, len(pool), ctrl.SeenCount()+ctrl.RemainingCount())
}

// Scenario 7: StopAfterNItems({reading: 2}, or) fires on the second
// update to "reading" and the controller returns a nil stimulus with
// the literal "Early stopping" reason.
func TestEarlyStoppingScenario(t *testing.T) {
	pool := threeItemPool()
	stopCtrl := stopping.NewStopAfterNItems(stopping.Or, map[string]int{"reading": 2})
	ctrl, err := NewController(pool, defaultOpts(), stopCtrl, 1)
	require.NoError(t, err)

	_, _, err = ctrl.UpdateAndSelect(UpdateAndSelectOptions{
		CatToSelect:  "reading",
		CatsToUpdate: []string{"reading"},
		Items:        []Stimulus{pool[0]},
		Answers:      []int{1},
	})
	require.NoError(t, err)

	state, chosen, err := ctrl.UpdateAndSelect(UpdateAndSelectOptions{
		CatToSelect:  "reading",
		CatsToUpdate: []string{"reading"},
		Items:        []Stimulus{pool[1]},
		Answers:      []int{0},
	})
	require.NoError(t, err)
	require.Nil(t, chosen)
	require.Equal(t, "Early stopping", state.StoppingReason)
}

func TestUnvalidatedSelectionReturnsNoneWhenExhausted(t *testing.T) {
	pool := threeItemPool() // every item is calibrated, none "unvalidated"
	ctrl, err := NewController(pool, defaultOpts(), nil, 1)
	require.NoError(t, err)

	state, chosen, err := ctrl.UpdateAndSelect(UpdateAndSelectOptions{CatToSelect: unvalidatedCat})
	require.NoError(t, err)
	require.Nil(t, chosen)
	require.Equal(t, "No unvalidated items remaining", state.StoppingReason)
}

func TestUnvalidatedSelectionPicksUncalibratedItem(t *testing.T) {
	pool := append(threeItemPool(), Stimulus{ID: "mystery"})
	ctrl, err := NewController(pool, defaultOpts(), nil, 1)
	require.NoError(t, err)

	_, chosen, err := ctrl.UpdateAndSelect(UpdateAndSelectOptions{CatToSelect: unvalidatedCat})
	require.NoError(t, err)
	require.NotNil(t, chosen)
	require.Equal(t, "mystery", chosen.ID)
}

func TestCorpusToSelectFromNarrowsCandidates(t *testing.T) {
	pool := threeItemPool() // item1 has both reading and math zetas
	ctrl, err := NewController(pool, defaultOpts(), nil, 1)
	require.NoError(t, err)

	_, chosen, err := ctrl.UpdateAndSelect(UpdateAndSelectOptions{
		CatToSelect:        "reading",
		CorpusToSelectFrom: "math",
	})
	require.NoError(t, err)
	require.NotNil(t, chosen)
	require.Equal(t, "item1", chosen.ID)
}
