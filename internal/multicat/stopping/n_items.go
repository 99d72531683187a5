package stopping

// StopAfterNItems fires once a construct has been administered its
// configured minimum number of items. Required defaults to 0 for any
// construct not listed, so an unlisted construct never blocks an "and".
type StopAfterNItems struct {
	Operator Operator
	Required map[string]int // cat name -> minimum n_items

	snapshots map[string]Snapshot
}

func NewStopAfterNItems(op Operator, required map[string]int) *StopAfterNItems {
	return &StopAfterNItems{Operator: op, Required: required}
}

func (c *StopAfterNItems) Update(sessions map[string]Snapshot) {
	c.snapshots = sessions
}

func (c *StopAfterNItems) Fire(evaluateCat string) (bool, error) {
	results := make(map[string]bool, len(c.snapshots))
	for cat, snap := range c.snapshots {
		results[cat] = snap.NItems >= c.Required[cat]
	}
	return combine(c.Operator, results, evaluateCat)
}
