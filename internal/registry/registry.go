// Package registry provides the process-wide, path-keyed table of open
// collections, so that multiple callers within the same process share one
// in-memory Collection per directory instead of racing independent copies.
package registry

import (
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cerp-labs/vexcol/internal/collection"
	"github.com/cerp-labs/vexcol/internal/vecerrors"
)

// DefaultCapacity bounds how many collections stay resident before the
// least-recently-used one is evicted and closed, keeping a long-lived host
// process from accumulating unbounded open snapshots.
const DefaultCapacity = 64

// Registry is a bounded, keyed table of open collections. The zero value is
// not usable; construct with New.
type Registry struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, *collection.Collection]
}

// New creates a registry with the given capacity. Capacity <= 0 uses
// DefaultCapacity.
func New(capacity int) (*Registry, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Registry{}
	cache, err := lru.NewWithEvict(capacity, r.onEvict)
	if err != nil {
		return nil, vecerrors.IO("failed to allocate registry cache", err)
	}
	r.cache = cache
	return r, nil
}

func (r *Registry) onEvict(_ string, c *collection.Collection) {
	if c.Dirty() {
		_ = c.Checkpoint()
	}
}

func key(cfg collection.OpenConfig) string {
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return cfg.Path
	}
	return abs
}

// Open returns the already-resident collection at cfg.Path, or opens (and
// registers) a new one if it isn't present — an idempotent open, checked
// before any load is attempted.
func (r *Registry) Open(cfg collection.OpenConfig) (*collection.Collection, error) {
	k := key(cfg)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.cache.Get(k); ok {
		return existing, nil
	}

	c, err := collection.Open(cfg)
	if err != nil {
		return nil, err
	}
	r.cache.Add(k, c)
	return c, nil
}

// Get returns the resident collection at path without opening it, and
// vecerrors.NotFound if it isn't registered.
func (r *Registry) Get(path string) (*collection.Collection, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cache.Get(abs)
	if !ok {
		return nil, vecerrors.NotFound(path)
	}
	return c, nil
}

// Close checkpoints (if dirty) and removes path from the registry.
func (r *Registry) Close(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cache.Get(abs)
	if !ok {
		return nil
	}
	var checkpointErr error
	if c.Dirty() {
		checkpointErr = c.Checkpoint()
	}
	r.cache.Remove(abs)
	return checkpointErr
}

// Paths returns every path currently resident in the registry.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cache.Keys()
}

// Len reports how many collections are currently resident.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cache.Len()
}
