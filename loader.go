package dataloader

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Loader coordinates a set of named sources for one workflow. Sources are
// attached once at setup, then Load/Get/Put dispatch by name through the
// package-level generic functions and Run flushes everything that is
// pending. A Loader holds no state of its own beyond the registry; it is
// meant to be created per job and discarded when the job ends.
type Loader struct {
	log logrus.FieldLogger

	mu      sync.Mutex
	sources map[string]Source
}

// Config configures a Loader.
type Config struct {
	// Logger receives debug-level run activity. Nil disables logging.
	Logger logrus.FieldLogger
}

// New creates an empty Loader.
func New(config Config) *Loader {
	return &Loader{
		log:     config.Logger,
		sources: map[string]Source{},
	}
}

// AddSource registers source under name, replacing any previous registration
// for that name. It returns the Loader for chaining during setup.
func (l *Loader) AddSource(name string, source Source) *Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[name] = source
	return l
}

// Source returns the source registered under name, or an UnknownSourceError.
func (l *Loader) Source(name string) (Source, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	source, ok := l.sources[name]
	if !ok {
		return nil, &UnknownSourceError{Name: name}
	}
	return source, nil
}

// Run flushes every source that holds pending work, one goroutine per
// source, and waits for all of them. A fetch failure inside one source never
// prevents another source, or another grouping key of the same source, from
// completing; failures are memoized per key and surface on Get. Run fails
// only when ctx does.
func (l *Loader) Run(ctx context.Context) error {
	l.mu.Lock()
	runnable := make(map[string]Source, len(l.sources))
	for name, source := range l.sources {
		if source.HasPending() {
			runnable[name] = source
		}
	}
	l.mu.Unlock()

	var wg sync.WaitGroup
	for name, source := range runnable {
		wg.Add(1)
		go func(name string, source Source) {
			defer wg.Done()
			if err := source.Run(ctx); err != nil && l.log != nil {
				l.log.WithField("source", name).WithError(err).Debug("run interrupted")
			}
		}(name, source)
	}
	wg.Wait()

	return ctx.Err()
}

// sourceAs resolves name and asserts the concrete source instantiation.
func sourceAs[G comparable, K comparable, V any](l *Loader, name string) (*BatchSource[G, K, V], error) {
	source, err := l.Source(name)
	if err != nil {
		return nil, err
	}
	typed, ok := source.(*BatchSource[G, K, V])
	if !ok {
		return nil, errors.Errorf("dataloader: source %q is %T, not the requested instantiation", name, source)
	}
	return typed, nil
}

// Load stages key under group on the named source.
func Load[G comparable, K comparable, V any](l *Loader, name string, group G, key K) error {
	source, err := sourceAs[G, K, V](l, name)
	if err != nil {
		return err
	}
	source.Load(group, key)
	return nil
}

// LoadMany stages every key under group on the named source.
func LoadMany[G comparable, K comparable, V any](l *Loader, name string, group G, keys []K) error {
	source, err := sourceAs[G, K, V](l, name)
	if err != nil {
		return err
	}
	source.LoadMany(group, keys)
	return nil
}

// Get returns the memoized result for key from the named source.
func Get[G comparable, K comparable, V any](l *Loader, name string, group G, key K) (V, error) {
	source, err := sourceAs[G, K, V](l, name)
	if err != nil {
		var zero V
		return zero, err
	}
	return source.Get(group, key)
}

// GetMany returns the memoized results for keys from the named source, in
// key order, combining per-key failures into one error.
func GetMany[G comparable, K comparable, V any](l *Loader, name string, group G, keys []K) ([]V, error) {
	source, err := sourceAs[G, K, V](l, name)
	if err != nil {
		return nil, err
	}
	return source.GetMany(group, keys)
}

// Put force-sets the cached value for key on the named source.
func Put[G comparable, K comparable, V any](l *Loader, name string, group G, key K, value V) error {
	source, err := sourceAs[G, K, V](l, name)
	if err != nil {
		return err
	}
	source.Put(group, key, value)
	return nil
}

// Prime caches value for key on the named source unless an entry exists.
func Prime[G comparable, K comparable, V any](l *Loader, name string, group G, key K, value V) (bool, error) {
	source, err := sourceAs[G, K, V](l, name)
	if err != nil {
		return false, err
	}
	return source.Prime(group, key, value), nil
}
