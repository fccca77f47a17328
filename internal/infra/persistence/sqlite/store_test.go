package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"cuecore/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateCue(domain.CueSpec{Genes: "g1", Owner: "alice", BirthTick: 5}); err != nil {
			return err
		}
		if err := tx.SetTransferApproval(1, "dave"); err != nil {
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

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if reopened.TotalSupply() != 1 || reopened.GenesisCount() != 1 {
		t.Fatalf("counters not rehydrated")
	}
	if owner, _ := reopened.OwnerOf(1); owner != "alice" {
		t.Fatalf("ownership not rehydrated, got %s", owner)
	}
	if delegate, ok := reopened.TransferApproval(1); !ok || delegate != "dave" {
		t.Fatalf("approval not rehydrated")
	}
	cue, ok := reopened.GetCue(1)
	if !ok || cue.Genes != "g1" || cue.BirthTick != 5 {
		t.Fatalf("cue not rehydrated: %+v", cue)
	}
}

func TestStoreFailedTransactionNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateCue(domain.CueSpec{Genes: "g", Owner: "alice"}); err != nil {
			return err
		}
		return domain.PreconditionError{Op: "test", Reason: "abort"}
	})
	if err == nil {
		t.Fatalf("expected abort")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if reopened.TotalSupply() != 0 {
		t.Fatalf("aborted transaction leaked to disk")
	}
}

func TestStoreRejectsNewerSnapshotVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := NewStore(path, nil)
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
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		"snapshot_version", []byte("99"),
	); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := NewStore(path, nil); err == nil {
		t.Fatalf("expected rejection of newer snapshot version")
	}
}
