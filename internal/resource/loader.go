package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/patrickmn/go-cache"
)

// Loader decodes a document from its Source once and then serves it from
// the cache. Failed loads are not cached, so the next call retries.
type Loader[T any] struct {
	cache  *cache.Cache
	source Source
	key    string
	decode func([]byte) (T, error)
	mu     sync.Mutex
}

// NewLoader returns a loader storing its value in c under the source's key
// qualified by the value type. The cache is owned by the caller and may be
// shared between loaders.
func NewLoader[T any](c *cache.Cache, source Source, decode func([]byte) (T, error)) *Loader[T] {
	var zero T
	return &Loader[T]{
		cache:  c,
		source: source,
		key:    fmt.Sprintf("%T|%s", zero, source.Key()),
		decode: decode,
	}
}

// Load returns the cached value, fetching and decoding it on first use.
func (l *Loader[T]) Load(ctx context.Context) (T, error) {
	if v, ok := l.cached(); ok {
		return v, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// another caller may have finished while we waited
	if v, ok := l.cached(); ok {
		return v, nil
	}

	var zero T
	data, err := l.source.Fetch(ctx)
	if err != nil {
		return zero, err
	}
	v, err := l.decode(data)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", l.source.Key(), err)
	}
	l.cache.Set(l.key, v, cache.NoExpiration)
	return v, nil
}

// Invalidate drops the cached value.
func (l *Loader[T]) Invalidate() {
	l.cache.Delete(l.key)
}

func (l *Loader[T]) cached() (T, bool) {
	var zero T
	raw, ok := l.cache.Get(l.key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}
