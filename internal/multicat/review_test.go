package multicat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adaptivecat/engine/internal/multicat/stopping"
)

func TestClassifyConvergence(t *testing.T) {
	require.Equal(t, ReviewPassed, classifyConvergence(0.5, 0.2, 0.01))
	require.Equal(t, ReviewDiverging, classifyConvergence(0.2, 0.5, 0.01))
	require.Equal(t, ReviewFlagged, classifyConvergence(0.3, 0.302, 0.01))
}

func TestReviewerReturnsNilFlagsWhenStoppingDoesNotFire(t *testing.T) {
	ctrl, err := NewController(threeItemPool(), defaultOpts(), stopping.NewStopAfterNItems(stopping.Only, map[string]int{"reading": 99}), 1)
	require.NoError(t, err)
	reviewer := NewReviewer(ctrl, 0)

	_, item, err := ctrl.UpdateAndSelect(UpdateAndSelectOptions{CatToSelect: "reading"})
	require.NoError(t, err)
	require.NotNil(t, item)

	state, _, flags, err := reviewer.UpdateAndSelect(UpdateAndSelectOptions{
		CatToSelect:                "reading",
		CatsToUpdate:               []string{"reading"},
		Items:                      []Stimulus{*item},
		Answers:                    []int{1},
		CatToEvaluateEarlyStopping: "reading",
	})
	require.NoError(t, err)
	require.Empty(t, state.StoppingReason)
	require.Nil(t, flags)
}

func TestReviewerFlagsConstructsWhenStoppingFires(t *testing.T) {
	ctrl, err := NewController(threeItemPool(), defaultOpts(), stopping.NewStopAfterNItems(stopping.Only, map[string]int{"reading": 1}), 1)
	require.NoError(t, err)
	reviewer := NewReviewer(ctrl, 0)

	_, item, err := ctrl.UpdateAndSelect(UpdateAndSelectOptions{CatToSelect: "reading"})
	require.NoError(t, err)
	require.NotNil(t, item)

	state, next, flags, err := reviewer.UpdateAndSelect(UpdateAndSelectOptions{
		CatToSelect:                "reading",
		CatsToUpdate:               []string{"reading"},
		Items:                      []Stimulus{*item},
		Answers:                    []int{1},
		CatToEvaluateEarlyStopping: "reading",
	})
	require.NoError(t, err)
	require.Equal(t, earlyStoppingReason, state.StoppingReason)
	require.Nil(t, next)
	require.NotNil(t, flags)
	require.Contains(t, flags, "reading")
	require.Contains(t, flags, "math")
	require.NotContains(t, flags, "unvalidated")
}
