// Package collection implements the façade that sequences the HNSW graph,
// the identity layer, the vector store, and snapshot persistence into the
// operations a caller actually uses: open, insert, delete, search, and
// checkpoint.
package collection

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cerp-labs/vexcol/internal/hnsw"
	"github.com/cerp-labs/vexcol/internal/identity"
	"github.com/cerp-labs/vexcol/internal/snapshot"
	"github.com/cerp-labs/vexcol/internal/vecerrors"
	"github.com/cerp-labs/vexcol/internal/vectorstore"
	"github.com/cerp-labs/vexcol/internal/vlog"
)

// Collection is a single named vector index: one HNSW graph, one identity
// map, one vector store, backed by one directory on disk.
type Collection struct {
	mu sync.RWMutex

	path       string
	dimensions int
	cfg        OpenConfig

	graph  *hnsw.Graph
	ids    *identity.Map
	vecs   *vectorstore.Store
	logger *slog.Logger

	dirty bool
}

// Match is a single search hit: the caller-facing external id plus a
// cosine similarity in [-1, 1] (1 - distance).
type Match struct {
	ID         string
	Similarity float32
}

// Stats reports point-in-time collection metrics.
type Stats struct {
	ActiveCount     int
	TombstoneCount  int
	Dimensions      int
	SnapshotBytes   int64
	EntryGraphNodes int
}

// sidecarLookupThreshold is the active-id count above which Contains
// consults the on-disk sidecar index instead of the in-memory map. Below
// it a Go map lookup is already O(1) and cheaper than opening SQLite; a
// var, not a const, so tests can exercise the sidecar path without
// inserting tens of thousands of vectors.
var sidecarLookupThreshold = 50000

// seedFor derives a deterministic graph RNG seed from a collection's path,
// so that rebuilding the graph after a reload (or in a second process)
// reproduces the same layer assignments for the same insertion order.
func seedFor(path string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return int64(h.Sum64())
}

// Open loads an existing collection from cfg.Path, or creates a fresh one if
// no snapshot exists yet. Opening is idempotent at the registry layer; this
// constructor always starts a new in-memory instance.
func Open(cfg OpenConfig) (*Collection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	logger, cleanup, err := loggerFor(cfg.LogPath)
	if err != nil {
		return nil, vecerrors.IO("failed to initialize collection logger", err)
	}
	_ = cleanup // the collection's logger lives for the process lifetime

	hnswCfg := cfg.HNSW
	hnswCfg.Seed = seedFor(cfg.Path)

	c := &Collection{
		path:       cfg.Path,
		dimensions: cfg.Dimensions,
		cfg:        cfg,
		graph:      hnsw.New(hnswCfg),
		ids:        identity.New(),
		vecs:       vectorstore.New(),
		logger:     logger,
	}

	state, err := snapshot.Load(cfg.Path)
	if err == snapshot.ErrNoSnapshot {
		logger.Info("opened fresh collection", "path", cfg.Path, "dimensions", cfg.Dimensions)
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	if state.Dimensions != cfg.Dimensions {
		return nil, vecerrors.DimensionMismatch(state.Dimensions, cfg.Dimensions)
	}

	c.ids.SetNextID(state.NextID)
	for ext, id := range state.IDMap {
		if _, tomb := state.Tombstones[ext]; tomb {
			continue
		}
		c.ids.Bind(ext, id)
	}
	for ext := range state.Tombstones {
		c.ids.Tombstone(ext)
	}

	for _, id := range ascendingActiveIDs(state) {
		v := state.Vectors[id]
		c.vecs.Put(id, v)
		c.graph.Insert(id, v)
	}

	logger.Info("reopened collection", "path", cfg.Path, "active", c.ids.ActiveCount(), "tombstones", c.ids.TombstoneCount())
	return c, nil
}

func ascendingActiveIDs(state *snapshot.State) []uint64 {
	ids := make([]uint64, 0, len(state.Vectors))
	for id := range state.Vectors {
		ext, ok := state.ReverseMap[id]
		if ok {
			if _, tomb := state.Tombstones[ext]; tomb {
				continue
			}
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func loggerFor(path string) (*slog.Logger, func(), error) {
	cfg := vlog.DefaultConfig()
	if path != "" {
		cfg.FilePath = path
	} else {
		cfg.FilePath = ""
	}
	return vlog.Setup(cfg)
}

// Path returns the directory backing this collection.
func (c *Collection) Path() string {
	return c.path
}

// Dimensions returns the fixed vector length for this collection.
func (c *Collection) Dimensions() int {
	return c.dimensions
}

// validateVector checks length and rejects NaN/Inf components.
func (c *Collection) validateVector(v []float32) error {
	if len(v) != c.dimensions {
		return vecerrors.DimensionMismatch(c.dimensions, len(v))
	}
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return vecerrors.InvalidVector("vector contains NaN or infinite component")
		}
	}
	return nil
}

// Insert upserts extID with vector. If extID already exists, its prior
// internal id is orphaned and tombstoned, then a new internal id is bound
// in its place — the old vector is removed from the graph's backing store
// but the stale graph node itself is pruned only on the next checkpoint.
func (c *Collection) Insert(extID string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validateVector(vector); err != nil {
		return err
	}

	oldID, hadOld := c.ids.BeginUpsert(extID)
	if hadOld {
		c.vecs.Delete(oldID)
	}

	id := c.ids.Allocate()
	c.ids.Bind(extID, id)
	c.vecs.Put(id, vector)
	c.graph.Insert(id, vector)
	c.dirty = true

	c.logger.Debug("inserted vector", "ext_id", extID, "internal_id", id, "replaced", hadOld)
	return nil
}

// Delete tombstones extID, if present. It never removes the graph node in
// place; Checkpoint performs the compacting rebuild. Returns whether
// extID was found and newly tombstoned.
func (c *Collection) Delete(extID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ids.IsTombstoned(extID) {
		return false
	}
	if _, ok := c.ids.Lookup(extID); !ok {
		return false
	}
	c.ids.Tombstone(extID)
	c.dirty = true

	c.logger.Debug("tombstoned vector", "ext_id", extID)

	if c.shouldAutoRebuild() {
		c.logger.Info("tombstone ratio exceeded threshold, triggering rebuild",
			"ratio", c.tombstoneRatio(), "threshold", c.cfg.TombstoneRebuildRatio)
		if err := c.checkpointLocked(); err != nil {
			c.logger.Error("automatic rebuild failed", "error", err)
		}
	}
	return true
}

func (c *Collection) tombstoneRatio() float64 {
	total := c.ids.Count()
	if total == 0 {
		return 0
	}
	return float64(c.ids.TombstoneCount()) / float64(total)
}

func (c *Collection) shouldAutoRebuild() bool {
	if c.cfg.TombstoneRebuildRatio <= 0 {
		return false
	}
	return c.tombstoneRatio() > c.cfg.TombstoneRebuildRatio
}

// Search returns up to k nearest neighbours of query by cosine similarity,
// excluding tombstoned external ids. Oversamples the graph by the current
// tombstone count so that k live results can still surface from a graph
// that still carries stale nodes between checkpoints.
func (c *Collection) Search(query []float32, k int) ([]Match, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.validateVector(query); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Match{}, nil
	}
	if c.graph.Len() == 0 {
		return []Match{}, nil
	}

	oversample := k + c.ids.TombstoneCount()
	ef := c.cfg.EfSearch
	if ef < oversample {
		ef = oversample
	}

	raw := c.graph.Search(query, oversample, ef)

	out := make([]Match, 0, k)
	for _, r := range raw {
		ext, ok := c.ids.ExternalID(r.ID)
		if !ok || c.ids.IsTombstoned(ext) {
			continue
		}
		out = append(out, Match{ID: ext, Similarity: 1 - r.Distance})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// Contains reports whether extID currently resolves to a live
// (non-tombstoned) entry. Once the active count grows past
// sidecarLookupThreshold and there are no unsaved mutations, the check is
// delegated to the on-disk sidecar index when one exists and is fresh;
// otherwise it falls back to the in-memory identity map.
func (c *Collection) Contains(extID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.dirty && c.ids.ActiveCount() > sidecarLookupThreshold && !snapshot.SidecarStale(c.path) {
		if side, err := snapshot.OpenSidecar(c.path); err == nil {
			defer side.Close()
			if ok, err := side.Contains(extID); err == nil {
				return ok && !c.ids.IsTombstoned(extID)
			}
		}
	}

	_, ok := c.ids.Lookup(extID)
	return ok && !c.ids.IsTombstoned(extID)
}

// Stats reports current collection metrics.
func (c *Collection) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		ActiveCount:     c.ids.ActiveCount(),
		TombstoneCount:  c.ids.TombstoneCount(),
		Dimensions:      c.dimensions,
		SnapshotBytes:   snapshot.FileSize(c.path),
		EntryGraphNodes: c.graph.Len(),
	}
}

// Checkpoint performs a compacting rebuild — purging tombstoned entries
// from the identity layer and vector store and rebuilding the HNSW graph
// from scratch in ascending internal-id order — then atomically persists
// the result to disk under an exclusive write lock.
func (c *Collection) Checkpoint() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkpointLocked()
}

// checkpointLocked assumes c.mu is already held for writing.
func (c *Collection) checkpointLocked() error {
	lock := snapshot.NewWriteLock(c.path)
	ok, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return vecerrors.Concurrency(fmt.Sprintf("another process holds the write lock for %q", c.path), nil)
	}
	defer lock.Unlock()

	for _, ext := range c.ids.Tombstoned() {
		if id, had := c.ids.Lookup(ext); had {
			c.vecs.Delete(id)
		}
		c.ids.Unbind(ext)
	}

	rebuilt := hnsw.New(hnsw.Config{
		M:              c.cfg.HNSW.M,
		M0:             c.cfg.HNSW.M0,
		EfConstruction: c.cfg.HNSW.EfConstruction,
		MaxLayer:       c.cfg.HNSW.MaxLayer,
		Seed:           seedFor(c.path),
	})
	c.vecs.Each(func(id uint64, v []float32) {
		rebuilt.Insert(id, v)
	})
	c.graph = rebuilt

	idMap, tombstones, nextID := c.ids.Snapshot()

	var g errgroup.Group
	g.Go(func() error {
		return snapshot.Save(c.path, c.dimensions, nextID, idMap, tombstones, c.vecs.Each)
	})
	g.Go(func() error {
		if err := snapshot.RebuildSidecar(c.path, idMap); err != nil {
			c.logger.Warn("sidecar rebuild failed, continuing without it", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.dirty = false
	c.logger.Info("checkpoint complete", "path", c.path, "active", c.ids.ActiveCount())
	return nil
}

// Dirty reports whether the collection has unsaved mutations.
func (c *Collection) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}
