package collection

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, dims int) OpenConfig {
	t.Helper()
	return OpenConfig{
		Path:       filepath.Join(t.TempDir(), "col"),
		Dimensions: dims,
	}
}

// TS01: insert then search returns the nearest vector first
func TestCollection_InsertAndSearch(t *testing.T) {
	c, err := Open(testConfig(t, 3))
	require.NoError(t, err)

	require.NoError(t, c.Insert("a", []float32{1, 0, 0}))
	require.NoError(t, c.Insert("b", []float32{0, 1, 0}))
	require.NoError(t, c.Insert("c", []float32{0.9, 0.1, 0}))

	matches, err := c.Search([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
}

// TS02: delete tombstones a live id and excludes it from subsequent searches
func TestCollection_Delete(t *testing.T) {
	c, err := Open(testConfig(t, 2))
	require.NoError(t, err)

	require.NoError(t, c.Insert("a", []float32{1, 0}))
	require.NoError(t, c.Insert("b", []float32{0, 1}))

	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a")) // already tombstoned

	matches, err := c.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotEqual(t, "a", m.ID)
	}
}

// TS03: checkpoint persists and reopening reconstructs the same active set
func TestCollection_CheckpointAndReopen(t *testing.T) {
	cfg := testConfig(t, 2)

	c, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Insert("a", []float32{1, 0}))
	require.NoError(t, c.Insert("b", []float32{0, 1}))
	require.True(t, c.Delete("b"))
	require.NoError(t, c.Checkpoint())
	assert.False(t, c.Dirty())

	reopened, err := Open(cfg)
	require.NoError(t, err)
	stats := reopened.Stats()
	assert.Equal(t, 1, stats.ActiveCount)
	assert.Equal(t, 0, stats.TombstoneCount)

	matches, err := reopened.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
}

// TS04: re-inserting an existing external id rebinds it to a fresh internal id
func TestCollection_Upsert(t *testing.T) {
	c, err := Open(testConfig(t, 2))
	require.NoError(t, err)

	require.NoError(t, c.Insert("a", []float32{1, 0}))
	require.NoError(t, c.Insert("a", []float32{0, 1}))

	matches, err := c.Search([]float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
	assert.InDelta(t, float32(1.0), matches[0].Similarity, 1e-4)
}

// TS05: a larger round trip survives checkpoint and reload intact
func TestCollection_LargeRoundTrip(t *testing.T) {
	cfg := testConfig(t, 4)
	c, err := Open(cfg)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		v := []float32{float32(i), float32(i % 7), float32(i % 3), 1}
		require.NoError(t, c.Insert(keyFor(i), v))
	}
	require.NoError(t, c.Checkpoint())

	reopened, err := Open(cfg)
	require.NoError(t, err)
	assert.Equal(t, 200, reopened.Stats().ActiveCount)
}

// TS06: unsupported metric is rejected at Validate time
func TestCollection_RejectsUnsupportedMetric(t *testing.T) {
	cfg := testConfig(t, 2)
	cfg.Metric = "euclidean"
	_, err := Open(cfg)
	require.Error(t, err)
}

// TS07: a dimension mismatch on insert is reported, not silently truncated
func TestCollection_DimensionMismatchOnInsert(t *testing.T) {
	c, err := Open(testConfig(t, 3))
	require.NoError(t, err)

	err = c.Insert("a", []float32{1, 0})
	require.Error(t, err)
}

// TS08: NaN components are rejected
func TestCollection_RejectsNaNVector(t *testing.T) {
	c, err := Open(testConfig(t, 2))
	require.NoError(t, err)

	nan := float32(0)
	nan = nan / nan
	err = c.Insert("a", []float32{nan, 0})
	require.Error(t, err)
}

// TS09: above sidecarLookupThreshold, Contains is answered from the
// on-disk sidecar index built by the last checkpoint, not the in-memory
// map — exercised here by lowering the threshold instead of inserting
// tens of thousands of vectors.
func TestCollection_ContainsUsesSidecarAboveThreshold(t *testing.T) {
	orig := sidecarLookupThreshold
	sidecarLookupThreshold = 1
	defer func() { sidecarLookupThreshold = orig }()

	c, err := Open(testConfig(t, 2))
	require.NoError(t, err)

	require.NoError(t, c.Insert("a", []float32{1, 0}))
	require.NoError(t, c.Insert("b", []float32{0, 1}))
	require.NoError(t, c.Checkpoint())

	assert.True(t, c.Contains("a"))
	assert.True(t, c.Contains("b"))
	assert.False(t, c.Contains("nope"))

	require.True(t, c.Delete("a"))
	assert.False(t, c.Contains("a"), "tombstoned id must not report as contained even via the sidecar")
}

func keyFor(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	if i < len(letters) {
		return string(letters[i])
	}
	return string(letters[i%len(letters)]) + string(letters[(i/len(letters))%len(letters)])
}
