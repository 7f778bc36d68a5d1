package counts

import (
	"fmt"
)

// Share is one row of a PercentageTable.
type Share struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Formatted renders the share as "75.00%".
func (s Share) Formatted() string {
	return fmt.Sprintf("%.2f%%", s.Percent)
}

// PercentageTable lists each label's share of all detections, in the label
// order of the counts it was computed from.
type PercentageTable []Share

// Percentages computes the share of every label in c. The table is empty when
// the total is zero.
func Percentages(c *ClassCounts) PercentageTable {
	total := c.Total()
	if total == 0 {
		return PercentageTable{}
	}
	table := make(PercentageTable, 0, c.Len())
	for _, item := range c.Items() {
		table = append(table, Share{
			Label:   item.Label,
			Count:   item.Count,
			Percent: float64(item.Count) / float64(total) * 100,
		})
	}
	return table
}

// Map returns label -> formatted percentage.
func (t PercentageTable) Map() map[string]string {
	m := make(map[string]string, len(t))
	for _, s := range t {
		m[s.Label] = s.Formatted()
	}
	return m
}

// Lines renders the table the way the report lists it:
// "<label>: <count> detections - <percentage>".
func (t PercentageTable) Lines() []string {
	lines := make([]string, 0, len(t))
	for _, s := range t {
		lines = append(lines, fmt.Sprintf("%s: %d detections - %s", s.Label, s.Count, s.Formatted()))
	}
	return lines
}
