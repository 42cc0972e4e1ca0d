package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/eventshare/internal/persistence/sqlite"
)

// NewSQLiteStore opens a migrated local-storage database in a temporary
// directory. The store is closed when the test finishes.
func NewSQLiteStore(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "eventshare.db")
	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	tb.Cleanup(func() { _ = storage.Close() })
	return storage
}
