package dataloader

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// FetchFunc resolves one batch of item keys for a single grouping key. It is
// invoked at most once per grouping key per Run, with the deduplicated keys
// queued since the previous flush, in unspecified order. Returning an error
// fails every requested key; keys absent from the returned map are handled
// according to the source's MissingPolicy. A FetchFunc must be safe to invoke
// concurrently with itself for different grouping keys.
type FetchFunc[G comparable, K comparable, V any] func(ctx context.Context, group G, keys []K) (map[K]V, error)

// MissingPolicy decides what it means when a fetch result omits a requested
// key.
type MissingPolicy int

const (
	// ResolveMissing caches the zero value as a successful "not found"
	// result for an omitted key.
	ResolveMissing MissingPolicy = iota

	// FailMissing caches a KeyNotFoundError for an omitted key.
	FailMissing
)

// Source is the untyped half of a batch source, enough for a Loader to
// coordinate flushing. Typed access goes through the concrete BatchSource or
// the package-level dispatch functions.
type Source interface {
	// Run flushes every pending group, invoking the batch fetch function
	// once per grouping key and memoizing all outcomes.
	Run(ctx context.Context) error

	// HasPending reports whether at least one item key awaits the next Run.
	HasPending() bool
}

// SourceConfig configures a BatchSource. Fetch is required, everything else
// is optional.
type SourceConfig[G comparable, K comparable, V any] struct {
	// Fetch resolves one group's batch of keys.
	Fetch FetchFunc[G, K, V]

	// Missing decides how keys omitted from a fetch result are cached.
	Missing MissingPolicy

	// Resolved, when set, is consulted before queuing a key: a true return
	// seeds the cache with the returned value and the key is never fetched.
	// Meant for objects that already carry their related data in an
	// explicitly marked loaded state; the hook must check that marker, not
	// guess from the shape of the data.
	Resolved func(group G, key K) (V, bool)

	// Timeout bounds each fetch invocation. Zero means no deadline beyond
	// the caller's context.
	Timeout time.Duration

	// Logger receives debug-level flush activity. Nil disables logging.
	Logger logrus.FieldLogger
}

// NewSource creates a batch source from config.
func NewSource[G comparable, K comparable, V any](config SourceConfig[G, K, V]) *BatchSource[G, K, V] {
	return &BatchSource[G, K, V]{
		fetch:    config.Fetch,
		missing:  config.Missing,
		resolved: config.Resolved,
		timeout:  config.Timeout,
		log:      config.Logger,
	}
}

// BatchSource owns one cache, one pending set and a batch fetch function.
// The grouping key G identifies one fetch shape, the item key K one entity
// within that shape. All methods are safe for concurrent use.
type BatchSource[G comparable, K comparable, V any] struct {
	fetch    FetchFunc[G, K, V]
	missing  MissingPolicy
	resolved func(group G, key K) (V, bool)
	timeout  time.Duration
	log      logrus.FieldLogger

	// mu guards cache and pending
	mu      sync.Mutex
	cache   cache[G, K, V]
	pending pending[G, K]
}

// Load stages key under group for the next Run. A key that is already cached
// or already pending is left untouched, so loading a fully cached key is an
// observable no-op: the next Run will not fetch it.
func (s *BatchSource[G, K, V]) Load(group G, key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.get(group, key); ok {
		return
	}
	if s.resolved != nil {
		if value, ok := s.resolved(group, key); ok {
			s.cache.put(group, key, result[V]{value: value})
			return
		}
	}
	s.pending.add(group, key)
}

// LoadMany stages every key under group. Keys already cached stay cached.
func (s *BatchSource[G, K, V]) LoadMany(group G, keys []K) {
	for _, key := range keys {
		s.Load(group, key)
	}
}

// HasPending reports whether at least one item key awaits the next Run.
func (s *BatchSource[G, K, V]) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.pending.empty()
}

// Run flushes the pending set. Each grouping key with queued item keys gets
// exactly one fetch invocation; distinct groups are fetched concurrently and
// Run returns only after all of them completed and merged into the cache.
// Fetch failures do not abort Run or other groups, they are memoized per
// affected key and surface on Get. Run fails only when ctx does.
func (s *BatchSource[G, K, V]) Run(ctx context.Context) error {
	s.mu.Lock()
	drained := s.pending.drain()
	s.mu.Unlock()

	var wg sync.WaitGroup
	for group, keys := range drained {
		wg.Add(1)
		go func(group G, keys []K) {
			defer wg.Done()
			results := s.fetchGroup(ctx, group, keys)

			// distinct groups write disjoint key subspaces, the lock
			// only orders merges against concurrent Load calls
			s.mu.Lock()
			s.cache.merge(group, results)
			s.mu.Unlock()
		}(group, keys)
	}
	wg.Wait()

	return ctx.Err()
}

// fetchGroup invokes the batch fetch function for one group and folds the
// outcome into per-key results.
func (s *BatchSource[G, K, V]) fetchGroup(ctx context.Context, group G, keys []K) map[K]result[V] {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	fetched, err := s.fetch(ctx, group, keys)
	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"group":    group,
			"keys":     len(keys),
			"duration": time.Since(started),
		}).Debug("flushed batch")
	}

	results := make(map[K]result[V], len(keys))
	if err != nil {
		// a whole-group failure is recorded for every requested key
		for _, key := range keys {
			results[key] = result[V]{err: err}
		}
		return results
	}

	for _, key := range keys {
		value, ok := fetched[key]
		if !ok && s.missing == FailMissing {
			results[key] = result[V]{err: &KeyNotFoundError{Group: group, Key: key}}
			continue
		}
		results[key] = result[V]{value: value}
	}
	return results
}

// Get returns the memoized result for key. It fails with a NotLoadedError
// when the key was never loaded and run, and with the memoized fetch error
// when the batch that covered it failed.
func (s *BatchSource[G, K, V]) Get(group G, key K) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.cache.get(group, key)
	if !ok {
		var zero V
		return zero, &NotLoadedError{Group: group, Key: key}
	}
	return r.value, r.err
}

// GetMany returns the memoized results for keys, in key order. Per-key
// failures are combined into one error; values at failed positions are left
// at the zero value.
func (s *BatchSource[G, K, V]) GetMany(group G, keys []K) ([]V, error) {
	values := make([]V, len(keys))
	var errs *multierror.Error
	for i, key := range keys {
		value, err := s.Get(group, key)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		values[i] = value
	}
	return values, errs.ErrorOrNil()
}

// Put force-sets the cached value for key, overwriting any previous entry
// and bypassing pending and fetch entirely. Use it to warm the cache with
// data obtained elsewhere.
func (s *BatchSource[G, K, V]) Put(group G, key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.put(group, key, result[V]{value: value})
}

// Prime caches value for key only when no entry exists yet and reports
// whether the value was stored. Unlike Put it never overwrites.
func (s *BatchSource[G, K, V]) Prime(group G, key K, value V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.get(group, key); ok {
		return false
	}
	s.cache.put(group, key, result[V]{value: value})
	return true
}

// Clear drops every cached result and every pending key, starting a fresh
// lifetime for the source.
func (s *BatchSource[G, K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = cache[G, K, V]{}
	s.pending = pending[G, K]{}
}
