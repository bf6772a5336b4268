// Package hnsw implements a Hierarchical Navigable Small World proximity
// graph for approximate nearest-neighbour search under cosine distance:
// randomized layer assignment, greedy descent to find an entry point per
// layer, a beam search of configurable width at each layer, and heuristic
// (diversity-favouring) neighbour selection on insert.
package hnsw

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// Config holds the tuning parameters fixed per collection.
type Config struct {
	// M is the maximum out-degree per node per layer above layer 0.
	M int
	// M0 is the maximum out-degree at layer 0 (typically 2*M).
	M0 int
	// EfConstruction is the candidate-list width used while inserting.
	EfConstruction int
	// MaxLayer is a hard cap on graph height.
	MaxLayer int
	// Seed makes layer assignment and tie-breaking reproducible.
	Seed int64
}

// DefaultConfig returns reasonable defaults for a moderate-sized collection.
func DefaultConfig() Config {
	return Config{
		M:              16,
		M0:             32,
		EfConstruction: 200,
		MaxLayer:       16,
	}
}

// Graph is a thread-safe HNSW index over uint64 node ids.
type Graph struct {
	mu sync.RWMutex

	m              int
	m0             int
	efConstruction int
	maxLayer       int
	ml             float64 // level-generation factor, 1/ln(M)
	rng            *rand.Rand

	nodes      map[uint64]*node
	entryPoint uint64
	hasEntry   bool
	topLayer   int
}

// New creates an empty graph with the given configuration.
func New(cfg Config) *Graph {
	if cfg.M <= 0 {
		cfg.M = DefaultConfig().M
	}
	if cfg.M0 <= 0 {
		cfg.M0 = 2 * cfg.M
	}
	if cfg.EfConstruction <= 0 {
		cfg.EfConstruction = DefaultConfig().EfConstruction
	}
	if cfg.MaxLayer <= 0 {
		cfg.MaxLayer = DefaultConfig().MaxLayer
	}

	return &Graph{
		m:              cfg.M,
		m0:             cfg.M0,
		efConstruction: cfg.EfConstruction,
		maxLayer:       cfg.MaxLayer,
		ml:             1 / math.Log(float64(cfg.M)),
		rng:            rand.New(rand.NewSource(cfg.Seed)),
		nodes:          make(map[uint64]*node),
	}
}

// Len returns the number of nodes currently in the graph.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// randomLevel draws the top layer for a new node from an exponential
// distribution with parameter 1/ln(M), capped at maxLayer. Must be called
// with g.mu held (it consumes from the graph's RNG).
func (g *Graph) randomLevel() int {
	level := int(math.Floor(-math.Log(g.rng.Float64()) * g.ml))
	if level > g.maxLayer {
		level = g.maxLayer
	}
	return level
}

// Insert adds id/vector to the graph. Deterministic given a fixed seed and
// insertion order. vector is retained by reference; callers must not mutate
// it afterward.
func (g *Graph) Insert(id uint64, vector []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	level := g.randomLevel()
	n := newNode(id, vector, level)

	if !g.hasEntry {
		g.nodes[id] = n
		g.entryPoint = id
		g.topLayer = level
		g.hasEntry = true
		return
	}

	ep := g.entryPoint
	for lc := g.topLayer; lc > level; lc-- {
		ep = g.greedyDescend(vector, ep, lc)
	}

	candidates := []candidate{{id: ep, dist: g.distanceTo(vector, ep)}}
	// Register the node before linking: pruning a neighbour re-measures
	// distances to every id in its list, including this one.
	g.nodes[id] = n
	for lc := min(level, g.topLayer); lc >= 0; lc-- {
		candidates = g.searchLayer(vector, candidates, g.efConstruction, lc)

		maxConn := g.m
		if lc == 0 {
			maxConn = g.m0
		}
		selected := g.selectNeighborsHeuristic(vector, candidates, maxConn)
		n.setNeighbors(lc, idsOf(selected))

		for _, s := range selected {
			neighbor := g.nodes[s.id]
			neighbor.addNeighbor(lc, id)
			g.pruneIfNeeded(neighbor, lc)
		}
	}

	if level > g.topLayer {
		g.topLayer = level
		g.entryPoint = id
	}
}

// pruneIfNeeded re-applies heuristic selection to a neighbor whose out-degree
// at layer exceeds the layer's cap after a new bidirectional link was added.
func (g *Graph) pruneIfNeeded(n *node, layer int) {
	maxConn := g.m
	if layer == 0 {
		maxConn = g.m0
	}
	if len(n.neighbors[layer]) <= maxConn {
		return
	}

	cands := make([]candidate, 0, len(n.neighbors[layer]))
	for id := range n.neighbors[layer] {
		cands = append(cands, candidate{id: id, dist: g.distanceTo(n.vector, id)})
	}
	selected := g.selectNeighborsHeuristic(n.vector, cands, maxConn)
	n.setNeighbors(layer, idsOf(selected))
}

// Result is a single search hit: an internal id and its cosine distance to
// the query, ascending-sorted by the caller.
type Result struct {
	ID       uint64
	Distance float32
}

// Search returns up to k nearest neighbours of query, ascending by
// distance, ties broken by id ascending. ef is the beam width used at layer
// 0; it is raised to k if smaller. Returns an empty slice on an empty graph.
func (g *Graph) Search(query []float32, k, ef int) []Result {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.hasEntry || k <= 0 {
		return []Result{}
	}
	if ef < k {
		ef = k
	}

	ep := g.entryPoint
	for lc := g.topLayer; lc > 0; lc-- {
		ep = g.greedyDescend(query, ep, lc)
	}

	candidates := []candidate{{id: ep, dist: g.distanceTo(query, ep)}}
	candidates = g.searchLayer(query, candidates, ef, 0)

	sort.Slice(candidates, func(i, j int) bool { return less(candidates[i], candidates[j]) })
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{ID: c.id, Distance: c.dist}
	}
	return results
}

// greedyDescend performs a single-best-candidate greedy walk from ep toward
// query at the given layer, returning the closest node id reached. This is
// the layer>0 entry-point refinement step (equivalent to a beam search with
// width 1).
func (g *Graph) greedyDescend(query []float32, ep uint64, layer int) uint64 {
	current := ep
	currentDist := g.distanceTo(query, current)

	for {
		improved := false
		for _, nb := range g.nodes[current].neighborIDs(layer) {
			d := g.distanceTo(query, nb)
			if d < currentDist {
				currentDist = d
				current = nb
				improved = true
			}
		}
		if !improved {
			return current
		}
	}
}

// searchLayer runs a beam search of width ef at the given layer, starting
// from entryPoints, and returns the ef closest candidates found.
func (g *Graph) searchLayer(query []float32, entryPoints []candidate, ef, layer int) []candidate {
	visited := make(map[uint64]struct{}, ef*2)
	candidatesHeap := &minHeap{}
	resultHeap := &maxHeap{}

	for _, ep := range entryPoints {
		visited[ep.id] = struct{}{}
		heap.Push(candidatesHeap, ep)
		heap.Push(resultHeap, ep)
	}
	for resultHeap.Len() > ef {
		heap.Pop(resultHeap)
	}

	for candidatesHeap.Len() > 0 {
		c := heap.Pop(candidatesHeap).(candidate)

		if resultHeap.Len() >= ef {
			furthest := (*resultHeap)[0]
			if c.dist > furthest.dist {
				break
			}
		}

		node, ok := g.nodes[c.id]
		if !ok {
			continue
		}
		if layer > node.layer {
			continue
		}
		for _, nbID := range node.neighborIDs(layer) {
			if _, seen := visited[nbID]; seen {
				continue
			}
			visited[nbID] = struct{}{}

			d := g.distanceTo(query, nbID)
			if resultHeap.Len() < ef {
				cand := candidate{id: nbID, dist: d}
				heap.Push(candidatesHeap, cand)
				heap.Push(resultHeap, cand)
			} else if furthest := (*resultHeap)[0]; d < furthest.dist {
				cand := candidate{id: nbID, dist: d}
				heap.Push(candidatesHeap, cand)
				heap.Push(resultHeap, cand)
				heap.Pop(resultHeap)
			}
		}
	}

	out := make([]candidate, resultHeap.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(resultHeap).(candidate)
	}
	return out
}

// selectNeighborsHeuristic picks up to maxConn candidates favouring
// diversity over raw proximity: a candidate is kept only if no
// already-selected neighbour is closer to it than it is to the query.
func (g *Graph) selectNeighborsHeuristic(query []float32, candidates []candidate, maxConn int) []candidate {
	sorted := make([]candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	selected := make([]candidate, 0, maxConn)
	for _, c := range sorted {
		if len(selected) >= maxConn {
			break
		}
		keep := true
		for _, s := range selected {
			if g.distanceTo(g.nodes[c.id].vector, s.id) < c.dist {
				keep = false
				break
			}
		}
		if keep {
			selected = append(selected, c)
		}
	}
	return selected
}

func (g *Graph) distanceTo(query []float32, id uint64) float32 {
	return CosineDistance(query, g.nodes[id].vector)
}

func idsOf(cs []candidate) []uint64 {
	ids := make([]uint64, len(cs))
	for i, c := range cs {
		ids[i] = c.id
	}
	return ids
}
