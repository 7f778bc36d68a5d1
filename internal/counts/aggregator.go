package counts

// Aggregator keeps the running per-class totals of one processing session.
// It is not safe for concurrent use; the owning session serializes access.
type Aggregator struct {
	totals *ClassCounts
}

func NewAggregator() *Aggregator {
	return &Aggregator{totals: NewClassCounts()}
}

// Reset clears the running totals.
func (a *Aggregator) Reset() {
	a.totals = NewClassCounts()
}

// Merge adds every count of frame to the running totals. Merging the same
// frame twice counts it twice.
func (a *Aggregator) Merge(frame *ClassCounts) {
	if a.totals == nil {
		a.totals = NewClassCounts()
	}
	for _, item := range frame.Items() {
		a.totals.Add(item.Label, item.Count)
	}
}

// Totals returns a copy of the running totals.
func (a *Aggregator) Totals() *ClassCounts {
	return a.totals.Clone()
}

func (a *Aggregator) Percentages() PercentageTable {
	return Percentages(a.totals)
}
