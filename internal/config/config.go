// Package config loads collection.OpenConfig from a YAML file on disk,
// layered over the library defaults the way a project config file overrides
// defaults in larger tools: defaults first, file values only where the file
// actually sets them.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cerp-labs/vexcol/internal/collection"
	"github.com/cerp-labs/vexcol/internal/hnsw"
)

// FileNames are tried in order when Load is given a directory instead of a
// file path.
var FileNames = []string{"vexcol.yaml", "vexcol.yml"}

// Load reads a collection.OpenConfig from path. If path is a directory, the
// first matching name in FileNames is used; a missing file is not an error
// and yields the library defaults.
func Load(path string) (collection.OpenConfig, error) {
	cfg := collection.OpenConfig{HNSW: hnsw.DefaultConfig()}

	resolved, err := resolveFile(path)
	if err != nil {
		return cfg, err
	}
	if resolved == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", resolved, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", resolved, err)
	}
	if cfg.HNSW == (hnsw.Config{}) {
		cfg.HNSW = hnsw.DefaultConfig()
	}
	return cfg, nil
}

func resolveFile(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range FileNames {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}
