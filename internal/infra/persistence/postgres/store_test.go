package postgres

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"cuecore/pkg/domain"

	_ "modernc.org/sqlite"
)

// openSQLiteBacked routes the store's SQL through an in-file SQLite database.
// The snapshot schema and upsert statements are portable enough that the full
// persistence flow can be exercised without a running Postgres.
func openSQLiteBacked(t *testing.T) func() {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pg-stub.db")
	return OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return sql.Open("sqlite", path)
	})
}

func TestNewStoreFailsWhenOpenFails(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	})
	defer restore()
	if _, err := NewStore("", nil); err == nil {
		t.Fatalf("expected open failure to propagate")
	}
}

func TestStorePersistsAndRehydrates(t *testing.T) {
	restore := openSQLiteBacked(t)
	defer restore()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateCue(domain.CueSpec{Genes: "g1", Owner: "alice", BirthTick: 3}); err != nil {
			return err
		}
		tx.IncrementGenesisCount()
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if reopened.TotalSupply() != 1 || reopened.GenesisCount() != 1 {
		t.Fatalf("state not rehydrated")
	}
	if owner, _ := reopened.OwnerOf(1); owner != "alice" {
		t.Fatalf("ownership not rehydrated, got %s", owner)
	}
}

func TestStoreRejectsNewerSnapshotVersion(t *testing.T) {
	restore := openSQLiteBacked(t)
	defer restore()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateCue(domain.CueSpec{Genes: "g", Owner: "alice"})
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if _, err := store.DB().Exec(
		`INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`,
		"snapshot_version", []byte("99"),
	); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := NewStore("", nil); err == nil {
		t.Fatalf("expected rejection of newer snapshot version")
	}
}
