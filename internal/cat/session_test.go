package cat

import (
	"math"
	"testing"

	"github.com/adaptivecat/engine/internal/caterr"
	"github.com/adaptivecat/engine/internal/irt"
	"github.com/adaptivecat/engine/internal/selector"
)

func TestNewSessionDefaults(t *testing.T) {
	s, err := NewSession(CatOptions{Method: "MLE", Selector: "mfi"})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.Theta() != 0 {
		t.Errorf("theta = %f, want 0", s.Theta())
	}
	if !math.IsInf(s.SE(), 1) {
		t.Errorf("se = %f, want +Inf", s.SE())
	}
	if s.NItems() != 0 {
		t.Errorf("n_items = %d, want 0", s.NItems())
	}
	if s.thetaMin != -6 || s.thetaMax != 6 {
		t.Errorf("bounds = [%f,%f], want [-6,6]", s.thetaMin, s.thetaMax)
	}
}

func TestNewSessionRejectsUnknownMethod(t *testing.T) {
	_, err := NewSession(CatOptions{Method: "bogus", Selector: "mfi"})
	assertInvalidConfig(t, err)
}

func TestNewSessionRejectsUnknownSelector(t *testing.T) {
	_, err := NewSession(CatOptions{Method: "mle", Selector: "bogus"})
	assertInvalidConfig(t, err)
}

func TestNewSessionRejectsUnknownStartSelector(t *testing.T) {
	_, err := NewSession(CatOptions{Method: "mle", Selector: "mfi", StartSelector: "bogus", NStartItems: 2})
	assertInvalidConfig(t, err)
}

func TestNewSessionEAPRequiresValidPrior(t *testing.T) {
	_, err := NewSession(CatOptions{
		Method: "eap", Selector: "mfi",
		PriorDist: "norm", PriorParams: []float64{0, -1}, // sigma <= 0
	})
	assertInvalidConfig(t, err)

	_, err = NewSession(CatOptions{
		Method: "eap", Selector: "mfi",
		PriorDist: "norm", PriorParams: []float64{100, 1}, // mean outside bounds
	})
	assertInvalidConfig(t, err)

	_, err = NewSession(CatOptions{
		Method: "eap", Selector: "mfi",
		PriorDist: "unif", PriorParams: []float64{2, -2}, // min >= max
	})
	assertInvalidConfig(t, err)

	_, err = NewSession(CatOptions{
		Method: "eap", Selector: "mfi",
		PriorDist: "unif", PriorParams: []float64{1}, // wrong length
	})
	assertInvalidConfig(t, err)

	_, err = NewSession(CatOptions{
		Method: "eap", Selector: "mfi",
		PriorDist: "bogus", PriorParams: []float64{0, 1},
	})
	assertInvalidConfig(t, err)
}

func TestMethodAndSelectorCaseInsensitive(t *testing.T) {
	_, err := NewSession(CatOptions{Method: "MlE", Selector: "MFI"})
	if err != nil {
		t.Fatalf("expected case-insensitive parse to succeed, got %v", err)
	}
}

func assertInvalidConfig(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !caterr.Is(err, caterr.InvalidConfig) {
		t.Errorf("err = %v, want InvalidConfig", err)
	}
}

func TestUpdateMismatchedLengthsIsArgumentMismatch(t *testing.T) {
	s, _ := NewSession(CatOptions{Method: "mle", Selector: "mfi"})
	err := s.UpdateMany([]irt.Params{{A: 1, B: 0, C: 0, D: 1}}, []int{1, 0})

	if !caterr.Is(err, caterr.ArgumentMismatch) {
		t.Fatalf("expected ArgumentMismatch, got %v", err)
	}
}

func TestUpdateKeepsThetaWithinBounds(t *testing.T) {
	s, _ := NewSession(CatOptions{Method: "mle", Selector: "mfi", ThetaMin: -3, ThetaMax: 3})

	for i := 0; i < 10; i++ {
		_ = s.UpdateMany([]irt.Params{{A: 2, B: -5, C: 0, D: 1}}, []int{1})
		if s.Theta() < -3 || s.Theta() > 3 {
			t.Fatalf("theta = %f escaped bounds", s.Theta())
		}
	}
}

func TestUpdateHistoryLengthMatchesResponses(t *testing.T) {
	s, _ := NewSession(CatOptions{Method: "mle", Selector: "mfi"})
	s.Update(irt.Params{A: 1, B: 0, C: 0, D: 1}, 1)
	s.Update(irt.Params{A: 1, B: 0.5, C: 0, D: 1}, 0)

	if s.NItems() != 2 {
		t.Errorf("n_items = %d, want 2", s.NItems())
	}
	if len(s.params) != len(s.responses) {
		t.Errorf("params len %d != responses len %d", len(s.params), len(s.responses))
	}
}

func TestFindNextPartitionsPool(t *testing.T) {
	s, _ := NewSession(CatOptions{Method: "mle", Selector: "mfi"})
	pool := []selector.Item{
		{ID: "a", Params: irt.Params{A: 1, B: -1, C: 0, D: 1}},
		{ID: "b", Params: irt.Params{A: 1, B: 0, C: 0, D: 1}},
		{ID: "c", Params: irt.Params{A: 1, B: 1, C: 0, D: 1}},
	}

	chosen, rest := s.FindNext(pool, nil)
	if chosen == nil {
		t.Fatal("expected a chosen item")
	}
	if len(rest)+1 != len(pool) {
		t.Fatalf("chosen+rest = %d, want %d", len(rest)+1, len(pool))
	}
	for _, r := range rest {
		if r.ID == chosen.ID {
			t.Errorf("chosen item also present in rest")
		}
	}
}

func TestFindNextRespectsStartupPolicy(t *testing.T) {
	s, _ := NewSession(CatOptions{
		Method: "mle", Selector: "mfi",
		NStartItems: 2, StartSelector: "fixed",
	})
	pool := []selector.Item{
		{ID: "a", Params: irt.Params{A: 1, B: 5, C: 0, D: 1}},
		{ID: "b", Params: irt.Params{A: 1, B: 0, C: 0, D: 1}},
	}

	chosen, _ := s.FindNext(pool, nil)
	if chosen.ID != "a" {
		t.Errorf("expected startup policy (fixed) to pick first item, got %v", chosen.ID)
	}
}

func TestFindNextOverrideSelector(t *testing.T) {
	s, _ := NewSession(CatOptions{Method: "mle", Selector: "mfi"})
	pool := []selector.Item{
		{ID: "a", Params: irt.Params{A: 1, B: 5, C: 0, D: 1}},
		{ID: "b", Params: irt.Params{A: 1, B: 0, C: 0, D: 1}},
	}

	chosen, _ := s.FindNext(pool, selector.Fixed{})
	if chosen.ID != "a" {
		t.Errorf("expected override (fixed) to pick first item, got %v", chosen.ID)
	}
}

func TestFindNextOverrideDoesNotBypassActiveStartupWindow(t *testing.T) {
	s, _ := NewSession(CatOptions{
		Method: "mle", Selector: "mfi",
		NStartItems: 2, StartSelector: "fixed",
	})
	pool := []selector.Item{
		{ID: "a", Params: irt.Params{A: 1, B: 5, C: 0, D: 1}},
		{ID: "b", Params: irt.Params{A: 1, B: 0, C: 0, D: 1}},
	}

	// b has the greatest information at theta=0, so an MFI override
	// would pick it if it won out over the start-up policy.
	chosen, _ := s.FindNext(pool, selector.MFI{})
	if chosen.ID != "a" {
		t.Errorf("expected the active startup policy (fixed) to win over the override, got %v", chosen.ID)
	}

	s.Update(irt.Params{A: 1, B: 5, C: 0, D: 1}, 1)
	s.Update(irt.Params{A: 1, B: 0, C: 0, D: 1}, 0)

	pool2 := []selector.Item{
		{ID: "c", Params: irt.Params{A: 1, B: 5, C: 0, D: 1}},
		{ID: "d", Params: irt.Params{A: 1, B: 0, C: 0, D: 1}},
	}
	chosen2, _ := s.FindNext(pool2, selector.Fixed{})
	if chosen2.ID != "c" {
		t.Errorf("expected the override to apply once the startup window closed, got %v", chosen2.ID)
	}
}
