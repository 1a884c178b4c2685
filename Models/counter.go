package Models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CounterEntry is a single key and its count.
type CounterEntry struct {
	Key   string
	Count int
}

// Counter counts string keys and remembers the order in which keys were first seen.
type Counter struct {
	counts *orderedmap.OrderedMap[string, int]
}

func NewCounter() *Counter {
	return &Counter{counts: orderedmap.New[string, int]()}
}

// Inc adds one to key. Updating an existing key keeps its position.
func (c *Counter) Inc(key string) {
	count, _ := c.counts.Get(key)
	c.counts.Set(key, count+1)
}

func (c *Counter) Get(key string) int {
	count, _ := c.counts.Get(key)
	return count
}

func (c *Counter) Len() int {
	return c.counts.Len()
}

// Total is the sum of every count.
func (c *Counter) Total() int {
	total := 0
	for pair := c.counts.Oldest(); pair != nil; pair = pair.Next() {
		total += pair.Value
	}
	return total
}

// Entries returns the counts in first-seen order.
func (c *Counter) Entries() []CounterEntry {
	entries := make([]CounterEntry, 0, c.counts.Len())
	for pair := c.counts.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, CounterEntry{Key: pair.Key, Count: pair.Value})
	}
	return entries
}
