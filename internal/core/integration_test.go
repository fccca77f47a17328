package core

import (
	"context"
	"path/filepath"
	"testing"

	"cuecore/internal/accessctl"
	"cuecore/internal/blob"
	"cuecore/internal/infra/persistence/sqlite"
	"cuecore/internal/journal"
	"cuecore/pkg/domain"
)

func TestServiceOverSQLiteWithJournal(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := sqlite.NewStore(path, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	j := journal.New(blob.NewMemory())
	auth := accessctl.NewStatic(map[domain.Role][]Address{
		domain.RoleAdmin: {admin},
	})
	tick := uint64(500)
	auction := &fakeAuction{addr: "addr:auction"}
	svc := NewService(store,
		WithAuthorizer(auth),
		WithTickSource(func() uint64 { return tick }),
		WithEventSink(j),
	)
	if err := svc.SetSaleAuction(ctx, admin, auction); err != nil {
		t.Fatalf("wire auction: %v", err)
	}

	id, err := svc.IssueGenesis(ctx, admin, "gene-payload")
	if err != nil {
		t.Fatalf("issue genesis: %v", err)
	}
	// The auction delivers the escrowed cue to a winning bidder.
	if err := svc.TransferFrom(ctx, auction.addr, svc.Config().SystemAddress, alice, id); err != nil {
		t.Fatalf("deliver to winner: %v", err)
	}

	info, err := j.Flush(ctx)
	if err != nil {
		t.Fatalf("flush journal: %v", err)
	}
	seg, err := j.ReadSegment(ctx, info.Key)
	if err != nil {
		t.Fatalf("read segment: %v", err)
	}
	// Birth, creation transfer, escrow, delivery transfer.
	if len(seg.Events) != 4 {
		t.Fatalf("expected 4 journaled events, got %d", len(seg.Events))
	}
	if seg.Events[len(seg.Events)-1].To != alice {
		t.Fatalf("delivery event missing: %+v", seg.Events)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := sqlite.NewStore(path, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if owner, _ := reopened.OwnerOf(id); owner != alice {
		t.Fatalf("persisted owner wrong: %s", owner)
	}
	if reopened.GenesisCount() != 1 {
		t.Fatalf("persisted genesis counter wrong")
	}
	if _, ok := reopened.TransferApproval(id); ok {
		t.Fatalf("escrow approval should be consumed by delivery")
	}
}
