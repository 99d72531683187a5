package stopping

// StopOnSEPlateau fires once a construct's last Patience SE values are
// all within Tolerance of their mean. Patience defaults to 1 and
// tolerance to 0 for any construct not listed.
type StopOnSEPlateau struct {
	Operator  Operator
	Patience  map[string]int
	Tolerance map[string]float64

	history map[string][]float64
	lastN   map[string]int
}

func NewStopOnSEPlateau(op Operator, patience map[string]int, tolerance map[string]float64) *StopOnSEPlateau {
	return &StopOnSEPlateau{
		Operator:  op,
		Patience:  patience,
		Tolerance: tolerance,
		history:   make(map[string][]float64),
		lastN:     make(map[string]int),
	}
}

// Update appends each construct's SE to its history, but only when its
// item count strictly increased since the previous update — this keeps
// a re-sent batch that didn't touch a construct from padding its
// plateau window with a repeated value.
func (c *StopOnSEPlateau) Update(sessions map[string]Snapshot) {
	for cat, snap := range sessions {
		if snap.NItems > c.lastN[cat] {
			c.history[cat] = append(c.history[cat], snap.SE)
			c.lastN[cat] = snap.NItems
		}
	}
}

func (c *StopOnSEPlateau) patienceFor(cat string) int {
	if p, ok := c.Patience[cat]; ok {
		return p
	}
	return 1
}

func (c *StopOnSEPlateau) toleranceFor(cat string) float64 {
	if tol, ok := c.Tolerance[cat]; ok {
		return tol
	}
	return 0
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func withinTolerance(xs []float64, tolerance float64) bool {
	m := mean(xs)
	for _, x := range xs {
		d := x - m
		if d < 0 {
			d = -d
		}
		if d > tolerance {
			return false
		}
	}
	return true
}

func (c *StopOnSEPlateau) Fire(evaluateCat string) (bool, error) {
	results := make(map[string]bool, len(c.history))
	for cat, hist := range c.history {
		patience := c.patienceFor(cat)
		if patience < 1 {
			patience = 1
		}
		if len(hist) < patience {
			results[cat] = false
			continue
		}
		window := hist[len(hist)-patience:]
		results[cat] = withinTolerance(window, c.toleranceFor(cat))
	}
	return combine(c.Operator, results, evaluateCat)
}
