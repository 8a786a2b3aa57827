package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// KeywordBackend names a selectable keyword-index implementation.
type KeywordBackend string

const (
	// KeywordBackendSQLite uses SQLite FTS5 (default). WAL mode gives it
	// concurrent multi-process access.
	KeywordBackendSQLite KeywordBackend = "sqlite"

	// KeywordBackendBleve uses Bleve v2. BoltDB's exclusive file lock
	// makes it single-process only.
	KeywordBackendBleve KeywordBackend = "bleve"
)

// NewKeywordIndexWithBackend builds the configured KeywordIndex. basePath
// is extended with the backend's conventional extension (.db for sqlite,
// .bleve for bleve). An empty basePath creates an in-memory index.
func NewKeywordIndexWithBackend(basePath string, config KeywordConfig, backend string) (KeywordIndex, error) {
	switch backend {
	case string(KeywordBackendSQLite), "":
		var path string
		if basePath != "" {
			path = basePath + ".db"
		}
		return NewSQLiteKeywordIndex(path, config)

	case string(KeywordBackendBleve):
		var path string
		if basePath != "" {
			path = basePath + ".bleve"
		}
		return NewBleveKeywordIndex(path, config)

	default:
		return nil, fmt.Errorf("unknown keyword backend: %s (valid options: sqlite, bleve)", backend)
	}
}

// GetKeywordIndexPath returns the on-disk path/directory for a backend.
func GetKeywordIndexPath(dataDir string, backend string) string {
	basePath := filepath.Join(dataDir, "keyword")
	switch backend {
	case string(KeywordBackendBleve):
		return basePath + ".bleve"
	default:
		return basePath + ".db"
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
