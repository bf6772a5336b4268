package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TS01: a fresh directory has no sidecar, considered stale only once a
// snapshot exists
func TestSidecarStale_NoSnapshot(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, SidecarStale(dir))
}

// TS02: rebuild then lookup round-trips
func TestSidecar_RebuildAndContains(t *testing.T) {
	dir := t.TempDir()
	idMap := map[string]uint64{"a": 0, "b": 1}

	require.NoError(t, Save(dir, 2, 2, idMap, nil, func(fn func(id uint64, v []float32)) {
		fn(0, []float32{1, 0})
		fn(1, []float32{0, 1})
	}))

	require.NoError(t, RebuildSidecar(dir, idMap))
	assert.False(t, SidecarStale(dir))

	sc, err := OpenSidecar(dir)
	require.NoError(t, err)
	defer sc.Close()

	ok, err := sc.Contains("a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sc.Contains("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TS03: a sidecar older than metadata.json is reported stale
func TestSidecarStale_OlderThanSnapshot(t *testing.T) {
	dir := t.TempDir()
	idMap := map[string]uint64{"a": 0}

	require.NoError(t, RebuildSidecar(dir, idMap))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, Save(dir, 1, 1, idMap, nil, func(fn func(id uint64, v []float32)) {
		fn(0, []float32{1})
	}))

	assert.True(t, SidecarStale(dir))
}
