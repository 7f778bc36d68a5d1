// Package counts turns detector summaries into per-class tallies and the
// percentage shares shown in the sidebar and the report.
package counts

import (
	"encoding/json"
)

// ClassCount is a single label and its detection count.
type ClassCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ClassCounts maps class labels to detection counts. Labels keep the order in
// which they were first inserted. The zero value is an empty mapping.
type ClassCounts struct {
	labels []string
	counts map[string]int
}

func NewClassCounts() *ClassCounts {
	return &ClassCounts{counts: make(map[string]int)}
}

// FromMap builds counts from m, with labels in the order given by order.
// Labels present in m but missing from order are dropped.
func FromMap(order []string, m map[string]int) *ClassCounts {
	c := NewClassCounts()
	for _, label := range order {
		if n, ok := m[label]; ok {
			c.Set(label, n)
		}
	}
	return c
}

// Set replaces the count of label. An existing label keeps its position.
func (c *ClassCounts) Set(label string, n int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[label]; !ok {
		c.labels = append(c.labels, label)
	}
	c.counts[label] = n
}

// Add increments the count of label by n, creating it at 0 first.
func (c *ClassCounts) Add(label string, n int) {
	c.Set(label, c.Get(label)+n)
}

func (c *ClassCounts) Get(label string) int {
	if c == nil {
		return 0
	}
	return c.counts[label]
}

func (c *ClassCounts) Has(label string) bool {
	if c == nil {
		return false
	}
	_, ok := c.counts[label]
	return ok
}

func (c *ClassCounts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.labels)
}

// Labels returns the labels in insertion order.
func (c *ClassCounts) Labels() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

func (c *ClassCounts) Total() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Items returns the label/count pairs in insertion order.
func (c *ClassCounts) Items() []ClassCount {
	if c == nil {
		return []ClassCount{}
	}
	items := make([]ClassCount, 0, len(c.labels))
	for _, label := range c.labels {
		items = append(items, ClassCount{Label: label, Count: c.counts[label]})
	}
	return items
}

func (c *ClassCounts) Map() map[string]int {
	m := make(map[string]int, c.Len())
	if c == nil {
		return m
	}
	for label, n := range c.counts {
		m[label] = n
	}
	return m
}

func (c *ClassCounts) Clone() *ClassCounts {
	clone := NewClassCounts()
	if c == nil {
		return clone
	}
	for _, label := range c.labels {
		clone.Set(label, c.counts[label])
	}
	return clone
}

// MarshalJSON encodes the counts as an ordered array of {label, count}.
func (c *ClassCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items())
}

func (c *ClassCounts) UnmarshalJSON(data []byte) error {
	var items []ClassCount
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*c = ClassCounts{}
	for _, item := range items {
		c.Set(item.Label, item.Count)
	}
	return nil
}
