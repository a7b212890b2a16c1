// Package cache provides the projection result cache. Projection
// output is deterministic for identical inputs, so caching by
// account + window is safe; mutations invalidate by key prefix.
package cache

import (
	"strings"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Cache is the engine-facing cache surface. The engine itself never
// touches it; services pass results through here.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	InvalidatePrefix(prefix string)
}

// Ristretto wraps a ristretto cache with a tracked key set so whole
// prefixes (one account's projections, say) can be dropped at once.
type Ristretto struct {
	cache *ristretto.Cache

	mu   sync.Mutex
	keys map[string]struct{}
}

// New builds a cache sized for projection windows.
func New() (*Ristretto, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     10000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{cache: c, keys: make(map[string]struct{})}, nil
}

func (r *Ristretto) Get(key string) (any, bool) {
	return r.cache.Get(key)
}

func (r *Ristretto) Set(key string, value any) {
	r.mu.Lock()
	r.keys[key] = struct{}{}
	r.mu.Unlock()
	r.cache.Set(key, value, 1)
}

// InvalidatePrefix drops every tracked key beginning with prefix.
func (r *Ristretto) InvalidatePrefix(prefix string) {
	r.mu.Lock()
	for key := range r.keys {
		if strings.HasPrefix(key, prefix) {
			r.cache.Del(key)
			delete(r.keys, key)
		}
	}
	r.mu.Unlock()
}

// Wait flushes pending writes; sets are buffered and only visible
// afterwards. Useful in tests.
func (r *Ristretto) Wait() {
	r.cache.Wait()
}
