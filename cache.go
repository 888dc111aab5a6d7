package dataloader

// result is one memoized fetch outcome: either a value or the error that
// produced it. A cached failure re-surfaces on every Get until the source is
// cleared or the entry is overwritten by Put.
type result[V any] struct {
	value V
	err   error
}

// cache memoizes results per (group, key). Entries persist for the source's
// lifetime; nothing is evicted automatically.
type cache[G comparable, K comparable, V any] struct {
	// lazily created, like the rest of the source state
	groups map[G]map[K]result[V]
}

func (c *cache[G, K, V]) get(group G, key K) (result[V], bool) {
	r, ok := c.groups[group][key]
	return r, ok
}

// put unconditionally overwrites the entry for key.
func (c *cache[G, K, V]) put(group G, key K, r result[V]) {
	if c.groups == nil {
		c.groups = map[G]map[K]result[V]{}
	}
	entries, ok := c.groups[group]
	if !ok {
		entries = map[K]result[V]{}
		c.groups[group] = entries
	}
	entries[key] = r
}

// merge bulk-inserts one group's fetch outcome.
func (c *cache[G, K, V]) merge(group G, results map[K]result[V]) {
	for key, r := range results {
		c.put(group, key, r)
	}
}
