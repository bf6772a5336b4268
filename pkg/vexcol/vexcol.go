// Package vexcol is the public entry point for embedding a vector-search
// collection in a host process: string-keyed upsert, cosine-similarity
// search, tombstone-based delete, and durable snapshot persistence behind a
// small façade.
package vexcol

import (
	"errors"

	"github.com/cerp-labs/vexcol/internal/collection"
	"github.com/cerp-labs/vexcol/internal/hnsw"
	"github.com/cerp-labs/vexcol/internal/registry"
)

// defaultRegistry is the process-wide table Open shares across callers, so
// that opening the same path twice in one process returns the same
// in-memory Collection instead of two independent copies racing each other
// for the same snapshot directory.
var defaultRegistry = mustRegistry()

func mustRegistry() *registry.Registry {
	r, err := registry.New(registry.DefaultCapacity)
	if err != nil {
		panic(err)
	}
	return r
}

// ErrNoPath is returned by Open when no path was configured via WithPath.
var ErrNoPath = errors.New("vexcol: path is required")

// ErrNoDimensions is returned by Open when no positive dimensions were
// configured via WithDimensions.
var ErrNoDimensions = errors.New("vexcol: dimensions must be positive")

// Collection is a single open vector-search collection, safe for concurrent
// use by multiple goroutines.
type Collection struct {
	inner *collection.Collection
}

// Match is one search hit: an external id plus its cosine similarity to the
// query vector, in [-1, 1].
type Match struct {
	ID         string
	Similarity float32
}

// Stats reports point-in-time metrics about an open collection.
type Stats struct {
	ActiveCount    int
	TombstoneCount int
	Dimensions     int
	SnapshotBytes  int64
}

// Option configures Open.
type Option func(*collection.OpenConfig)

// WithPath sets the directory a collection's snapshot lives in. Required.
func WithPath(path string) Option {
	return func(c *collection.OpenConfig) { c.Path = path }
}

// WithDimensions sets the fixed vector length for the collection. Required.
func WithDimensions(d int) Option {
	return func(c *collection.OpenConfig) { c.Dimensions = d }
}

// WithGraphParams tunes the HNSW graph's out-degree and construction width.
// Zero-valued fields fall back to the library defaults (M=16,
// ef_construction=200); a zero m0 becomes twice the effective M.
func WithGraphParams(m, m0, efConstruction int) Option {
	return func(c *collection.OpenConfig) {
		c.HNSW.M = m
		c.HNSW.M0 = m0
		c.HNSW.EfConstruction = efConstruction
	}
}

// WithEfSearch sets the default beam width used during Search.
func WithEfSearch(ef int) Option {
	return func(c *collection.OpenConfig) { c.EfSearch = ef }
}

// WithTombstoneRebuildRatio sets the tombstone-to-total ratio above which
// Delete triggers an automatic compacting rebuild. Zero keeps the library
// default; a negative value disables automatic rebuilds.
func WithTombstoneRebuildRatio(ratio float64) Option {
	return func(c *collection.OpenConfig) { c.TombstoneRebuildRatio = ratio }
}

// WithLogPath routes the collection's structured logs to a file instead of
// discarding them.
func WithLogPath(path string) Option {
	return func(c *collection.OpenConfig) { c.LogPath = path }
}

// Open returns the collection at the configured path, reusing the
// already-resident instance if this process has it open already. At
// minimum WithPath and WithDimensions must be supplied. Opening the same
// path twice in one process is a no-op that returns the same Collection,
// not two independent copies of the same snapshot.
func Open(opts ...Option) (*Collection, error) {
	cfg := collection.OpenConfig{HNSW: hnsw.DefaultConfig()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Path == "" {
		return nil, ErrNoPath
	}
	if cfg.Dimensions <= 0 {
		return nil, ErrNoDimensions
	}

	inner, err := defaultRegistry.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &Collection{inner: inner}, nil
}

// Close checkpoints the collection (if it has unsaved mutations) and
// releases it from the process-wide registry. Later callers that Open the
// same path again get a freshly reloaded Collection.
func (c *Collection) Close() error {
	return defaultRegistry.Close(c.inner.Path())
}

// Insert upserts id with vector. Re-inserting an existing id replaces its
// vector under a freshly allocated internal id.
func (c *Collection) Insert(id string, vector []float32) error {
	return c.inner.Insert(id, vector)
}

// Delete tombstones id. Returns false if id was not present or already
// deleted.
func (c *Collection) Delete(id string) bool {
	return c.inner.Delete(id)
}

// Contains reports whether id currently resolves to a live entry.
func (c *Collection) Contains(id string) bool {
	return c.inner.Contains(id)
}

// Search returns up to k nearest neighbours of query by cosine similarity.
func (c *Collection) Search(query []float32, k int) ([]Match, error) {
	raw, err := c.inner.Search(query, k)
	if err != nil {
		return nil, err
	}
	out := make([]Match, len(raw))
	for i, m := range raw {
		out[i] = Match{ID: m.ID, Similarity: m.Similarity}
	}
	return out, nil
}

// Checkpoint compacts tombstoned entries out of the graph and identity
// layer, then atomically persists the result to disk.
func (c *Collection) Checkpoint() error {
	return c.inner.Checkpoint()
}

// Stats reports current collection metrics.
func (c *Collection) Stats() Stats {
	s := c.inner.Stats()
	return Stats{
		ActiveCount:    s.ActiveCount,
		TombstoneCount: s.TombstoneCount,
		Dimensions:     s.Dimensions,
		SnapshotBytes:  s.SnapshotBytes,
	}
}
