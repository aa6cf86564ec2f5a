package screen

import (
	"context"
	"time"
)

// FetchFunc reads a value from the backend
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Loader loads one kind of screen data through the cache
type Loader[T any] struct {
	cache      *Cache
	prefix     string
	staleAfter time.Duration
}

// NewLoader creates a loader whose keys start with prefix. Values older than
// staleAfter are fetched again; zero means every load fetches.
func NewLoader[T any](cache *Cache, prefix string, staleAfter time.Duration) *Loader[T] {
	return &Loader[T]{cache: cache, prefix: prefix, staleAfter: staleAfter}
}

func (l *Loader[T]) key(sub string) string {
	if sub == "" {
		return l.prefix
	}
	return l.prefix + ":" + sub
}

// Load returns the cached value when it is fresh and refresh is false, and
// fetches otherwise. A result arriving after ctx is done is returned to the
// caller but never written to the cache.
func (l *Loader[T]) Load(ctx context.Context, sid, sub string, refresh bool, fetch FetchFunc[T]) (T, error) {
	if !refresh {
		if v, ok := l.fresh(sid, sub); ok {
			return v, nil
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if ctx.Err() != nil {
		return v, ctx.Err()
	}

	l.cache.Put(sid, l.key(sub), v)
	return v, nil
}

// Peek returns the cached value regardless of its age
func (l *Loader[T]) Peek(sid, sub string) (T, bool) {
	v, _, ok := l.cache.Get(sid, l.key(sub))
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Update applies fn to the cached value
func (l *Loader[T]) Update(sid, sub string, fn func(T) T) {
	l.cache.Update(sid, l.key(sub), func(v any) any {
		typed, _ := v.(T)
		return fn(typed)
	})
}

func (l *Loader[T]) fresh(sid, sub string) (T, bool) {
	var zero T
	v, at, ok := l.cache.Get(sid, l.key(sub))
	if !ok || l.staleAfter <= 0 || l.cache.now().Sub(at) > l.staleAfter {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
