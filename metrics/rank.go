package metrics

import "sort"

// Count is one row of a ranked table.
type Count struct {
	Key   string
	Count int
}

// counter tallies keys and remembers the order in which they first appeared.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(keys ...string) {
	for _, k := range keys {
		if _, ok := c.counts[k]; !ok {
			c.order = append(c.order, k)
		}
		c.counts[k]++
	}
}

// ranked sorts by descending count, ties keep first-seen order. limit <= 0 keeps every row.
func (c *counter) ranked(limit int) []Count {
	out := make([]Count, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Count{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
