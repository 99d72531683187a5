package stopping

// StopIfSEBelowThreshold fires once a construct's last Patience SE
// values each satisfy SE - threshold <= tolerance. Defaults when a
// construct is unlisted: patience=1, tolerance=0, threshold=0.
type StopIfSEBelowThreshold struct {
	Operator  Operator
	Threshold map[string]float64
	Patience  map[string]int
	Tolerance map[string]float64

	history map[string][]float64
	lastN   map[string]int
}

func NewStopIfSEBelowThreshold(op Operator, threshold map[string]float64, patience map[string]int, tolerance map[string]float64) *StopIfSEBelowThreshold {
	return &StopIfSEBelowThreshold{
		Operator:  op,
		Threshold: threshold,
		Patience:  patience,
		Tolerance: tolerance,
		history:   make(map[string][]float64),
		lastN:     make(map[string]int),
	}
}

func (c *StopIfSEBelowThreshold) Update(sessions map[string]Snapshot) {
	for cat, snap := range sessions {
		if snap.NItems > c.lastN[cat] {
			c.history[cat] = append(c.history[cat], snap.SE)
			c.lastN[cat] = snap.NItems
		}
	}
}

func (c *StopIfSEBelowThreshold) thresholdFor(cat string) float64 {
	return c.Threshold[cat]
}

func (c *StopIfSEBelowThreshold) patienceFor(cat string) int {
	if p, ok := c.Patience[cat]; ok {
		return p
	}
	return 1
}

func (c *StopIfSEBelowThreshold) toleranceFor(cat string) float64 {
	if tol, ok := c.Tolerance[cat]; ok {
		return tol
	}
	return 0
}

func (c *StopIfSEBelowThreshold) Fire(evaluateCat string) (bool, error) {
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
		threshold := c.thresholdFor(cat)
		tolerance := c.toleranceFor(cat)
		ok := true
		for _, se := range window {
			if se-threshold > tolerance {
				ok = false
				break
			}
		}
		results[cat] = ok
	}
	return combine(c.Operator, results, evaluateCat)
}
