package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cerp-labs/vexcol/internal/config"
	"github.com/cerp-labs/vexcol/pkg/vexcol"
)

func openCollection() (*vexcol.Collection, error) {
	opts := []vexcol.Option{}

	if flagConfig != "" {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			vexcol.WithPath(cfg.Path),
			vexcol.WithDimensions(cfg.Dimensions),
			vexcol.WithGraphParams(cfg.HNSW.M, cfg.HNSW.M0, cfg.HNSW.EfConstruction),
			vexcol.WithEfSearch(cfg.EfSearch),
			vexcol.WithTombstoneRebuildRatio(cfg.TombstoneRebuildRatio),
		)
	}

	// Flags always take precedence over a loaded config file.
	if flagPath != "" {
		opts = append(opts, vexcol.WithPath(flagPath))
	}
	if flagDims > 0 {
		opts = append(opts, vexcol.WithDimensions(flagDims))
	}

	col, err := vexcol.Open(opts...)
	if err != nil {
		return nil, fmt.Errorf("open collection (use --path/--dims or --config): %w", err)
	}
	return col, nil
}

func parseVector(raw string) ([]float32, error) {
	parts := strings.Split(raw, ",")
	v := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
