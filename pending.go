package dataloader

// pending collects the item keys awaiting the next flush, grouped by grouping
// key. Membership is a set: queuing the same key twice is a no-op.
type pending[G comparable, K comparable] struct {
	groups map[G]map[K]struct{}
}

// add queues key under group. It reports false when the key was already
// queued.
func (p *pending[G, K]) add(group G, key K) bool {
	if p.groups == nil {
		p.groups = map[G]map[K]struct{}{}
	}
	keys, ok := p.groups[group]
	if !ok {
		keys = map[K]struct{}{}
		p.groups[group] = keys
	}
	if _, queued := keys[key]; queued {
		return false
	}
	keys[key] = struct{}{}
	return true
}

func (p *pending[G, K]) empty() bool {
	return len(p.groups) == 0
}

// drain returns every queued group as a flat key slice, in unspecified order,
// and leaves the pending set empty.
func (p *pending[G, K]) drain() map[G][]K {
	drained := make(map[G][]K, len(p.groups))
	for group, keys := range p.groups {
		flat := make([]K, 0, len(keys))
		for key := range keys {
			flat = append(flat, key)
		}
		drained[group] = flat
	}
	p.groups = nil
	return drained
}
