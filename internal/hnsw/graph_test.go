package hnsw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TS01: Insert and Search
func TestGraph_InsertAndSearch(t *testing.T) {
	// Given: an empty graph
	g := New(DefaultConfig())

	// And: three vectors, a=[1,0,0,0], b=[0,1,0,0], c=[0.9,0.1,0,0]
	g.Insert(1, []float32{1, 0, 0, 0})
	g.Insert(2, []float32{0, 1, 0, 0})
	g.Insert(3, []float32{0.9, 0.1, 0, 0})

	// When: I search for [1,0,0,0] with k=2
	results := g.Search([]float32{1, 0, 0, 0}, 2, 50)

	// Then: the closest two are id 1 (exact) then id 3 (near)
	require.Len(t, results, 2)
	assert.Equal(t, uint64(1), results[0].ID)
	assert.Equal(t, uint64(3), results[1].ID)
	assert.Less(t, results[0].Distance, float32(0.01))
}

// TS02: empty graph search returns empty, not an error
func TestGraph_SearchEmpty(t *testing.T) {
	g := New(DefaultConfig())
	results := g.Search([]float32{1, 0, 0}, 5, 50)
	assert.Empty(t, results)
}

// TS03: results are ordered ascending by distance, ties broken by id
func TestGraph_SearchOrdering(t *testing.T) {
	g := New(DefaultConfig())
	// Two vectors identical in direction to the query; tie on distance.
	g.Insert(5, []float32{1, 0})
	g.Insert(2, []float32{1, 0})
	g.Insert(9, []float32{0, 1})

	results := g.Search([]float32{1, 0}, 3, 50)
	require.Len(t, results, 3)
	assert.Equal(t, uint64(2), results[0].ID) // tie broken by ascending id
	assert.Equal(t, uint64(5), results[1].ID)
	assert.Equal(t, uint64(9), results[2].ID)
}

// TS04: deterministic given a fixed seed
func TestGraph_DeterministicWithSeed(t *testing.T) {
	build := func() []Result {
		cfg := DefaultConfig()
		cfg.Seed = 42
		g := New(cfg)
		for i := uint64(0); i < 200; i++ {
			v := make([]float32, 8)
			for j := range v {
				v[j] = float32((i+uint64(j))%7) - 3
			}
			g.Insert(i, v)
		}
		return g.Search([]float32{1, 2, 3, 4, 5, 6, 7, 8}, 10, 50)
	}

	a := build()
	b := build()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].Distance, b[i].Distance)
	}
}

// TS05: recall sanity on a larger random set — top-1 for a vector's own
// coordinates should be itself with near-zero distance.
func TestGraph_RecallOwnVector(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	g := New(cfg)

	const n = 300
	const dims = 16
	vectors := make([][]float32, n)
	r := newTestRand(7)
	for i := 0; i < n; i++ {
		v := make([]float32, dims)
		for j := range v {
			v[j] = r()
		}
		vectors[i] = v
		g.Insert(uint64(i), v)
	}

	hits := 0
	for i := 0; i < n; i++ {
		results := g.Search(vectors[i], 1, 64)
		require.Len(t, results, 1)
		if results[0].ID == uint64(i) {
			hits++
		}
	}
	// HNSW is approximate; require strong but not perfect recall.
	assert.GreaterOrEqual(t, hits, int(float64(n)*0.95))
}

// TS06: heuristic neighbor selection favours diversity — with M=2, two tight
// clusters stay linked to each other, so a search from the midpoint between
// them reaches all four nodes.
func TestGraph_HeuristicSelectionDiversity(t *testing.T) {
	g := New(Config{M: 2, M0: 4, EfConstruction: 50, MaxLayer: 4})

	// A tight cluster around [1,0] and another around [0,1].
	g.Insert(1, []float32{1, 0})
	g.Insert(2, []float32{0.99, 0.01})
	g.Insert(3, []float32{0, 1})
	g.Insert(4, []float32{0.01, 0.99})

	results := g.Search([]float32{0.5, 0.5}, 4, 50)
	require.Len(t, results, 4)
}

func newTestRand(seed int64) func() float32 {
	state := uint64(seed*2654435761 + 1)
	return func() float32 {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return float32(state%1000) / 1000.0
	}
}
