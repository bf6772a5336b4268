// Package snapshot serialises and deserialises a collection's persistent
// state (the vector store and identity layer, not the HNSW graph — the
// graph is rebuilt from the vectors on load) to and from a directory on
// disk.
package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/cerp-labs/vexcol/internal/vecerrors"
)

// MetadataFile is the single mandatory file in a collection's directory.
const MetadataFile = "metadata.json"

// metadata is the on-disk schema. Field names are stable across versions.
type metadata struct {
	Dimensions int               `json:"dimensions"`
	NextID     uint64            `json:"next_id"`
	IDMap      map[string]uint64 `json:"id_map"`
	DeletedIDs []string          `json:"deleted_ids"`
	Vectors    map[string]string `json:"vectors"`
}

// State is the decoded, reconstructed form of a loaded snapshot.
type State struct {
	Dimensions int
	NextID     uint64
	IDMap      map[string]uint64
	ReverseMap map[uint64]string
	Tombstones map[string]struct{}
	Vectors    map[uint64][]float32
}

// Save writes the collection's state to <dir>/metadata.json. The write is
// atomic with respect to readers: it writes to a temp file in the same
// directory and renames over the target.
func Save(dir string, dimensions int, nextID uint64, idMap map[string]uint64, tombstones map[string]struct{}, vectors func(func(id uint64, v []float32))) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return vecerrors.IO(fmt.Sprintf("failed to create collection directory %q", dir), err)
	}

	deleted := make([]string, 0, len(tombstones))
	for id := range tombstones {
		deleted = append(deleted, id)
	}
	sort.Strings(deleted)

	encodedVectors := make(map[string]string)
	vectors(func(id uint64, v []float32) {
		encodedVectors[strconv.FormatUint(id, 10)] = encodeVector(v)
	})

	meta := metadata{
		Dimensions: dimensions,
		NextID:     nextID,
		IDMap:      idMap,
		DeletedIDs: deleted,
		Vectors:    encodedVectors,
	}

	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return vecerrors.IO("failed to marshal metadata", err)
	}

	finalPath := filepath.Join(dir, MetadataFile)
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, payload, 0o644); err != nil {
		return vecerrors.IO("failed to write temp metadata file", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return vecerrors.IO("failed to rename metadata file into place", err)
	}

	return nil
}

// ErrNoSnapshot is returned by Load when metadata.json does not exist.
var ErrNoSnapshot = fmt.Errorf("no existing collection")

// Load reads and validates <dir>/metadata.json, reconstructing vectors and
// the inverted reverse_map. It does not rebuild the HNSW graph; the caller
// does that by inserting every non-tombstoned id in ascending order.
func Load(dir string) (*State, error) {
	path := filepath.Join(dir, MetadataFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, vecerrors.IO(fmt.Sprintf("failed to read %q", path), err)
	}

	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, vecerrors.CorruptSnapshot("metadata.json is not valid JSON", err)
	}

	vectors := make(map[uint64][]float32, len(meta.Vectors))
	for idStr, b64 := range meta.Vectors {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			return nil, vecerrors.CorruptSnapshot(fmt.Sprintf("non-numeric internal id key %q", idStr), err)
		}
		vec, err := decodeVector(b64, meta.Dimensions)
		if err != nil {
			return nil, err
		}
		vectors[id] = vec
	}

	reverseMap := make(map[uint64]string, len(meta.IDMap))
	for ext, id := range meta.IDMap {
		reverseMap[id] = ext
	}

	tombstones := make(map[string]struct{}, len(meta.DeletedIDs))
	for _, ext := range meta.DeletedIDs {
		tombstones[ext] = struct{}{}
	}

	return &State{
		Dimensions: meta.Dimensions,
		NextID:     meta.NextID,
		IDMap:      meta.IDMap,
		ReverseMap: reverseMap,
		Tombstones: tombstones,
		Vectors:    vectors,
	}, nil
}

// FileSize returns the size in bytes of <dir>/metadata.json, or 0 if it
// does not exist.
func FileSize(dir string) int64 {
	info, err := os.Stat(filepath.Join(dir, MetadataFile))
	if err != nil {
		return 0
	}
	return info.Size()
}

func encodeVector(v []float32) string {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		putFloat32LE(buf[i*4:], f)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeVector(b64 string, dimensions int) ([]float32, error) {
	buf, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, vecerrors.CorruptSnapshot("vector payload is not valid base64", err)
	}
	if len(buf) != 4*dimensions {
		return nil, vecerrors.CorruptSnapshot(
			fmt.Sprintf("vector payload decodes to %d bytes, expected %d", len(buf), 4*dimensions), nil)
	}
	v := make([]float32, dimensions)
	for i := range v {
		v[i] = float32FromLE(buf[i*4:])
	}
	return v, nil
}
