package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/example/eventshare/internal/persistence"
)

func newTestStorage(t *testing.T, dsn string) *Storage {
	t.Helper()

	storage, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return storage
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t, filepath.Join(t.TempDir(), "nested", "eventshare.db"))

	if err := storage.Set(ctx, "authToken", "token-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := storage.Set(ctx, "authToken", "token-2"); err != nil {
		t.Fatalf("Set (upsert) failed: %v", err)
	}
	if err := storage.Set(ctx, "username", "alice"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := storage.Get(ctx, "authToken")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "token-2" {
		t.Fatalf("expected upserted value, got %q", value)
	}

	keys, err := storage.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if !slices.Equal(keys, []string{"authToken", "username"}) {
		t.Fatalf("unexpected keys: %v", keys)
	}

	if err := storage.Delete(ctx, "authToken", "missing"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := storage.Get(ctx, "authToken"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := storage.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	keys, _ = storage.Keys(ctx)
	if len(keys) != 0 {
		t.Fatalf("expected empty storage after Clear, got %v", keys)
	}
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "eventshare.db")

	first := newTestStorage(t, dsn)
	if err := first.Set(ctx, "postLoginRedirectUrl", "https://example.com/event.html?type=vip"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := newTestStorage(t, dsn)
	value, err := second.Get(ctx, "postLoginRedirectUrl")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if value != "https://example.com/event.html?type=vip" {
		t.Fatalf("unexpected value after reopen: %q", value)
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t, ":memory:")

	if err := storage.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	versions, err := storage.AppliedVersions(ctx)
	if err != nil {
		t.Fatalf("AppliedVersions failed: %v", err)
	}
	if !slices.Equal(versions, []string{"001"}) {
		t.Fatalf("unexpected applied versions: %v", versions)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "empty dsn", cfg: Config{DSN: " "}},
		{name: "negative timeout", cfg: Config{DSN: ":memory:", BusyTimeout: -1}},
		{name: "unknown journal mode", cfg: Config{DSN: ":memory:", JournalMode: "FAST"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OpenWithConfig(tt.cfg); err == nil {
				t.Fatalf("expected configuration error")
			}
		})
	}
}

func TestDatabaseDir(t *testing.T) {
	tests := map[string]string{
		":memory:":                       "",
		"file:eventshare.db":             "",
		"file:/var/lib/es/x.db?mode=rwc": "/var/lib/es",
		"data/eventshare.db":             "data",
	}
	for dsn, want := range tests {
		if got := databaseDir(dsn); got != want {
			t.Fatalf("databaseDir(%q) = %q, want %q", dsn, got, want)
		}
	}
}
