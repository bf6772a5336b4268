package vlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TS01: DefaultConfig points at vexcol.log under the default log directory
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.Equal(t, "vexcol.log", filepath.Base(cfg.FilePath))
}

// TS02: Setup with an empty FilePath discards logs instead of erroring
func TestSetup_NoFilePathDiscards(t *testing.T) {
	logger, cleanup, err := Setup(Config{})
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, logger)
	logger.Info("discarded")
}

// TS03: Setup creates the log file and writes through to it
func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "vexcol.log")

	logger, cleanup, err := Setup(Config{FilePath: logPath, MaxSizeMB: 1, MaxFiles: 3})
	require.NoError(t, err)
	defer cleanup()

	logger.Info("hello")
	cleanup()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")
}

// TS04: a writer defaults to buffered writes — no sync-after-every-call —
// since vexcol ships no log-tailing companion that needs each line on disk
// immediately; the write must still succeed.
func TestRotatingWriter_DefaultsToBuffered(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.immediateSync)

	n, err := w.Write([]byte("line\n"))
	require.NoError(t, err)
	assert.Equal(t, len("line\n"), n)

	require.NoError(t, w.Sync())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(content))
}

// TS05: SetImmediateSync(true) makes each write visible without an explicit Sync
func TestRotatingWriter_ImmediateSyncOptIn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	w.SetImmediateSync(true)
	_, err = w.Write([]byte("immediate\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "immediate\n", string(content))
}

// TS06: writing past maxSize rotates the current file to .1
func TestRotatingWriter_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rotate.log")

	w, err := NewRotatingWriter(path, 0, 3) // 0 MB: any write exceeds the limit
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write(make([]byte, 2048))
	require.NoError(t, err)
	_, err = w.Write(make([]byte, 2048))
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "rotated file .1 should exist")
}

// TS07: rotated files beyond maxFiles are pruned
func TestRotatingWriter_MaxFilesLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maxfiles.log")

	w, err := NewRotatingWriter(path, 0, 2)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		_, _ = w.Write(make([]byte, 1024))
	}

	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err), "rotated file .3 should not survive a maxFiles=2 writer")
}
