package dataloader

import (
	"context"
)

// NewKV returns a source for plain keyed lookup backends. The grouping key is
// a string tag such as an entity type or a table name, the item key a primary
// identifier; fetch covers all identifiers requested since the last flush in
// one round trip and returns an identifier to entity mapping.
func NewKV[K comparable, V any](fetch FetchFunc[string, K, V]) *BatchSource[string, K, V] {
	return NewSource(SourceConfig[string, K, V]{
		Fetch: fetch,
	})
}

// NewMapKV returns a KV source served from in-memory fixture data, keyed by
// tag and then by identifier. Identifiers absent from the data follow the
// default missing policy. Mostly useful in tests and examples.
func NewMapKV[K comparable, V any](data map[string]map[K]V) *BatchSource[string, K, V] {
	return NewKV(func(_ context.Context, group string, keys []K) (map[K]V, error) {
		entities := data[group]
		fetched := make(map[K]V, len(keys))
		for _, key := range keys {
			if value, ok := entities[key]; ok {
				fetched[key] = value
			}
		}
		return fetched, nil
	})
}
