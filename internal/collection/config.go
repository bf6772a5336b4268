package collection

import (
	"github.com/cerp-labs/vexcol/internal/hnsw"
	"github.com/cerp-labs/vexcol/internal/vecerrors"
)

// EfSearchDefault is the default oversampling width used when the caller
// doesn't request a larger ef.
const EfSearchDefault = 50

// DefaultTombstoneRebuildRatio is the tombstone-to-total ratio above which
// the façade proactively checkpoints instead of waiting for an explicit
// call, bounding how far search cost drifts from live result count. Set to
// 0 to disable automatic rebuilds entirely.
const DefaultTombstoneRebuildRatio = 0.2

// OpenConfig configures Open.
type OpenConfig struct {
	// Path is the directory that holds the snapshot; created on first
	// checkpoint.
	Path string `yaml:"path" json:"path"`

	// Dimensions is fixed for the lifetime of the collection and checked on
	// reload.
	Dimensions int `yaml:"dimensions" json:"dimensions"`

	// IndexType must be "hnsw".
	IndexType string `yaml:"index_type" json:"index_type"`

	// Metric must be "cosine".
	Metric string `yaml:"metric" json:"metric"`

	// HNSW carries the graph tuning parameters. Zero-valued fields fall
	// back to hnsw.DefaultConfig().
	HNSW hnsw.Config `yaml:"hnsw" json:"hnsw"`

	// EfSearch is the default oversampling width for Search. Zero falls
	// back to EfSearchDefault.
	EfSearch int `yaml:"ef_search" json:"ef_search"`

	// TombstoneRebuildRatio triggers an automatic checkpoint once the
	// tombstone ratio exceeds it. Negative disables the default and keeps
	// rebuilds purely explicit; zero-value (unset) applies
	// DefaultTombstoneRebuildRatio.
	TombstoneRebuildRatio float64 `yaml:"tombstone_rebuild_ratio" json:"tombstone_rebuild_ratio"`

	// LogPath, when set, routes the collection's structured logs to a file
	// instead of discarding them.
	LogPath string `yaml:"log_path" json:"log_path"`
}

// Validate checks the static parts of a config that don't require touching
// disk.
func (c OpenConfig) Validate() error {
	if c.IndexType != "" && c.IndexType != "hnsw" {
		return vecerrors.UnsupportedConfig("unsupported index_type: only \"hnsw\" is supported").
			WithDetail("index_type", c.IndexType)
	}
	if c.Metric != "" && c.Metric != "cosine" {
		return vecerrors.UnsupportedConfig("unsupported metric: only \"cosine\" is supported").
			WithDetail("metric", c.Metric)
	}
	if c.Dimensions <= 0 {
		return vecerrors.UnsupportedConfig("dimensions must be positive")
	}
	if c.Path == "" {
		return vecerrors.UnsupportedConfig("path is required")
	}
	return nil
}

// withDefaults fills in the normalized config used internally.
func (c OpenConfig) withDefaults() OpenConfig {
	if c.IndexType == "" {
		c.IndexType = "hnsw"
	}
	if c.Metric == "" {
		c.Metric = "cosine"
	}
	if c.EfSearch <= 0 {
		c.EfSearch = EfSearchDefault
	}
	if c.TombstoneRebuildRatio == 0 {
		c.TombstoneRebuildRatio = DefaultTombstoneRebuildRatio
	}
	if c.TombstoneRebuildRatio < 0 {
		c.TombstoneRebuildRatio = 0
	}
	return c
}
