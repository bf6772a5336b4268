package snapshot

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cerp-labs/vexcol/internal/vecerrors"
)

// SidecarFile is an optional performance accelerant: a pure-Go SQLite index
// of external id -> internal id, used for O(log n) Contains checks on very
// large id_maps. metadata.json
// remains the sole authoritative schema; the sidecar is derived and
// disposable.
const SidecarFile = "ids.sqlite"

// Sidecar wraps the optional id-lookup accelerant.
type Sidecar struct {
	db *sql.DB
}

// SidecarPath returns the sidecar's path under dir.
func SidecarPath(dir string) string {
	return filepath.Join(dir, SidecarFile)
}

// SidecarStale reports whether the sidecar is missing or older than
// metadata.json, meaning it must be rebuilt before use.
func SidecarStale(dir string) bool {
	metaInfo, err := os.Stat(filepath.Join(dir, MetadataFile))
	if err != nil {
		return false // no snapshot yet; nothing to be stale against
	}
	sideInfo, err := os.Stat(SidecarPath(dir))
	if err != nil {
		return true
	}
	return sideInfo.ModTime().Before(metaInfo.ModTime())
}

// RebuildSidecar recreates the sidecar database from idMap, replacing any
// existing one.
func RebuildSidecar(dir string, idMap map[string]uint64) error {
	path := SidecarPath(dir)
	_ = os.Remove(path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return vecerrors.IO("failed to open sidecar index", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE id_map (ext_id TEXT PRIMARY KEY, internal_id INTEGER NOT NULL)`); err != nil {
		return vecerrors.IO("failed to create sidecar schema", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return vecerrors.IO("failed to begin sidecar transaction", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO id_map (ext_id, internal_id) VALUES (?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return vecerrors.IO("failed to prepare sidecar insert", err)
	}
	for ext, id := range idMap {
		if _, err := stmt.Exec(ext, int64(id)); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return vecerrors.IO(fmt.Sprintf("failed to index id %q", ext), err)
		}
	}
	_ = stmt.Close()
	if err := tx.Commit(); err != nil {
		return vecerrors.IO("failed to commit sidecar index", err)
	}
	return nil
}

// OpenSidecar opens an existing sidecar database for reads.
func OpenSidecar(dir string) (*Sidecar, error) {
	db, err := sql.Open("sqlite", SidecarPath(dir))
	if err != nil {
		return nil, vecerrors.IO("failed to open sidecar index", err)
	}
	return &Sidecar{db: db}, nil
}

// Contains reports whether extID is present in the sidecar index.
func (s *Sidecar) Contains(extID string) (bool, error) {
	row := s.db.QueryRow(`SELECT 1 FROM id_map WHERE ext_id = ?`, extID)
	var one int
	err := row.Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, vecerrors.IO("sidecar lookup failed", err)
	default:
		return true, nil
	}
}

// Close releases the sidecar's database handle.
func (s *Sidecar) Close() error {
	return s.db.Close()
}
