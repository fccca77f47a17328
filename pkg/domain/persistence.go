package domain

import "context"

// Transaction exposes the ledger primitives that a persistence implementation
// must support within an atomic scope. Every mutation is applied to a staged
// copy of the ledger; nothing is visible outside the transaction until commit.
type Transaction interface {
	Snapshot() TransactionView

	// CreateCue allocates the next dense ID, stores the record, and assigns
	// initial ownership (the null -> owner transfer). It fails with a
	// CapacityError when the allocation width is exhausted.
	CreateCue(spec CueSpec) (Cue, error)

	// TransferCue reassigns ownership of id from -> to, adjusts both balance
	// counts, and clears both approval channels. It is the single mutation
	// path for ownership.
	TransferCue(from, to Address, id uint64) error

	// UpdateCue mutates the cue's mutable fields (cooldown state). Immutable
	// fields changed by the mutator abort the call.
	UpdateCue(id uint64, mutator func(*Cue) error) (Cue, error)

	// SetTransferApproval sets, overwrites, or clears (null delegate) the
	// transfer delegation slot for id.
	SetTransferApproval(id uint64, delegate Address) error

	// SetBreedingApproval sets, overwrites, or clears the breeding delegation
	// slot for id.
	SetBreedingApproval(id uint64, delegate Address) error

	// IncrementGenesisCount advances the cumulative genesis counter and
	// returns the new value.
	IncrementGenesisCount() uint64
}

// TransactionView provides read-only access to the staged ledger state. It is
// the same surface rules evaluate against.
type TransactionView interface {
	RuleView
	TokensOfOwner(owner Address) []uint64
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetCue(id uint64) (Cue, bool)
	OwnerOf(id uint64) (Address, bool)
	BalanceOf(owner Address) int
	TransferApproval(id uint64) (Address, bool)
	BreedingApproval(id uint64) (Address, bool)
	TokensOfOwner(owner Address) []uint64
	TotalSupply() uint64
	GenesisCount() uint64
}
