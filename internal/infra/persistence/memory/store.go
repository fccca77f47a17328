// Package memory provides the in-memory transactional ledger store. It is the
// reference implementation of the persistence contract and the engine the
// durable backends build upon.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cuecore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain
// persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Cue aliases domain.Cue for in-memory persistence operations.
	Cue = domain.Cue
	// Address aliases domain.Address.
	Address = domain.Address
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// ledgerState is the complete mutable surface of the registry: entity table,
// ownership map, balance map, both approval maps, and the two counters.
type ledgerState struct {
	cues              map[uint64]Cue
	owners            map[uint64]Address
	balances          map[Address]int
	transferApprovals map[uint64]Address
	breedingApprovals map[uint64]Address
	nextID            uint64
	genesisCount      uint64
}

// SnapshotVersion identifies the serialized snapshot layout.
const SnapshotVersion = 1

// Snapshot captures a point-in-time clone of the store state for durable
// persistence.
type Snapshot struct {
	Version           int                 `json:"version"`
	Cues              map[uint64]Cue      `json:"cues"`
	Owners            map[uint64]Address  `json:"owners"`
	Balances          map[Address]int     `json:"balances"`
	TransferApprovals map[uint64]Address  `json:"transfer_approvals"`
	BreedingApprovals map[uint64]Address  `json:"breeding_approvals"`
	NextID            uint64              `json:"next_id"`
	GenesisCount      uint64              `json:"genesis_count"`
}

func newLedgerState() ledgerState {
	return ledgerState{
		cues:              make(map[uint64]Cue),
		owners:            make(map[uint64]Address),
		balances:          make(map[Address]int),
		transferApprovals: make(map[uint64]Address),
		breedingApprovals: make(map[uint64]Address),
		nextID:            1,
	}
}

func (s ledgerState) clone() ledgerState {
	cloned := newLedgerState()
	for k, v := range s.cues {
		cloned.cues[k] = v
	}
	for k, v := range s.owners {
		cloned.owners[k] = v
	}
	for k, v := range s.balances {
		cloned.balances[k] = v
	}
	for k, v := range s.transferApprovals {
		cloned.transferApprovals[k] = v
	}
	for k, v := range s.breedingApprovals {
		cloned.breedingApprovals[k] = v
	}
	cloned.nextID = s.nextID
	cloned.genesisCount = s.genesisCount
	return cloned
}

func snapshotFromState(s ledgerState) Snapshot {
	c := s.clone()
	return Snapshot{
		Version:           SnapshotVersion,
		Cues:              c.cues,
		Owners:            c.owners,
		Balances:          c.balances,
		TransferApprovals: c.transferApprovals,
		BreedingApprovals: c.breedingApprovals,
		NextID:            c.nextID,
		GenesisCount:      c.genesisCount,
	}
}

// migrateSnapshot normalizes snapshots from older layouts or hand-edited
// files: nil maps become empty, and a missing NextID is rebuilt from the
// dense ID invariant.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Cues == nil {
		snapshot.Cues = make(map[uint64]Cue)
	}
	if snapshot.Owners == nil {
		snapshot.Owners = make(map[uint64]Address)
	}
	if snapshot.Balances == nil {
		snapshot.Balances = make(map[Address]int)
	}
	if snapshot.TransferApprovals == nil {
		snapshot.TransferApprovals = make(map[uint64]Address)
	}
	if snapshot.BreedingApprovals == nil {
		snapshot.BreedingApprovals = make(map[uint64]Address)
	}
	if snapshot.NextID == 0 {
		snapshot.NextID = uint64(len(snapshot.Cues)) + 1
	}
	return snapshot
}

func stateFromSnapshot(snapshot Snapshot) ledgerState {
	return ledgerState{
		cues:              snapshot.Cues,
		owners:            snapshot.Owners,
		balances:          snapshot.Balances,
		transferApprovals: snapshot.TransferApprovals,
		breedingApprovals: snapshot.BreedingApprovals,
		nextID:            snapshot.NextID,
		genesisCount:      snapshot.GenesisCount,
	}
}

// Store provides an in-memory transactional store for the ledger.
type Store struct {
	mu     sync.RWMutex
	state  ledgerState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newLedgerState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the wall-clock provider used to stamp birth times.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// transaction applies mutations to a staged clone of the store state.
type transaction struct {
	store   *Store
	state   ledgerState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of ledger state to rules and
// to precondition checks running inside a transaction.
type transactionView struct {
	state *ledgerState
}

func newTransactionView(state *ledgerState) TransactionView {
	return transactionView{state: state}
}

// ListCues returns all cues within the snapshot, ordered by ID.
func (v transactionView) ListCues() []Cue {
	out := make([]Cue, 0, len(v.state.cues))
	for _, c := range v.state.cues {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindCue retrieves a cue by ID from the snapshot.
func (v transactionView) FindCue(id uint64) (Cue, bool) {
	c, ok := v.state.cues[id]
	return c, ok
}

// OwnerOf returns the owner assignment for id.
func (v transactionView) OwnerOf(id uint64) (Address, bool) {
	owner, ok := v.state.owners[id]
	return owner, ok
}

// BalanceOf returns the cached entity count for owner; zero for unknown owners.
func (v transactionView) BalanceOf(owner Address) int {
	return v.state.balances[owner]
}

// Balances returns a copy of the full balance map.
func (v transactionView) Balances() map[Address]int {
	out := make(map[Address]int, len(v.state.balances))
	for k, c := range v.state.balances {
		out[k] = c
	}
	return out
}

// TransferApproval returns the standing transfer delegate for id, if any.
func (v transactionView) TransferApproval(id uint64) (Address, bool) {
	a, ok := v.state.transferApprovals[id]
	return a, ok
}

// BreedingApproval returns the standing breeding delegate for id, if any.
func (v transactionView) BreedingApproval(id uint64) (Address, bool) {
	a, ok := v.state.breedingApprovals[id]
	return a, ok
}

// TotalSupply returns the count of allocated cues.
func (v transactionView) TotalSupply() uint64 {
	return v.state.nextID - 1
}

// GenesisCount returns the cumulative genesis issuance counter.
func (v transactionView) GenesisCount() uint64 {
	return v.state.genesisCount
}

// TokensOfOwner scans the full ownership map. O(total supply); reporting use
// only.
func (v transactionView) TokensOfOwner(owner Address) []uint64 {
	return tokensOfOwner(v.state, owner)
}

func tokensOfOwner(state *ledgerState, owner Address) []uint64 {
	if owner.IsNull() {
		return nil
	}
	out := make([]uint64, 0, state.balances[owner])
	for id, o := range state.owners {
		if o == owner {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The clone is committed only when fn succeeds and no registered rule reports
// a blocking violation; otherwise the store is untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the staged state for precondition checks and rules.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// CreateCue allocates the next dense ID, stores the record, and performs the
// null -> owner transfer establishing initial ownership.
func (tx *transaction) CreateCue(spec domain.CueSpec) (Cue, error) {
	if spec.Owner.IsNull() {
		return Cue{}, domain.PreconditionError{Op: "create", Reason: "owner is the null address"}
	}
	id := tx.state.nextID
	if id > domain.MaxCueID {
		return Cue{}, domain.CapacityError{Op: "create", Reason: "cue ID allocation width exhausted"}
	}
	for _, p := range spec.Parents {
		if p > domain.MaxCueID {
			return Cue{}, domain.CapacityError{Op: "create", Reason: fmt.Sprintf("parent ID %d exceeds allocation width", p)}
		}
	}
	cue := Cue{
		ID:        id,
		Genes:     spec.Genes,
		BirthTime: tx.now,
		BirthTick: spec.BirthTick,
		Parent1:   spec.Parents[0],
		Parent2:   spec.Parents[1],
		Parent3:   spec.Parents[2],
	}
	tx.state.cues[id] = cue
	tx.state.nextID = id + 1
	tx.recordChange(Change{Entity: domain.EntityCue, Action: domain.ActionCreate, After: cue})

	tx.state.owners[id] = spec.Owner
	tx.state.balances[spec.Owner]++
	tx.recordChange(Change{
		Entity: domain.EntityOwnership,
		Action: domain.ActionCreate,
		After:  domain.OwnershipRecord{CueID: id, Owner: spec.Owner},
	})
	return cue, nil
}

// TransferCue reassigns ownership and clears both approval channels. Every
// ownership mutation in the system funnels through here.
func (tx *transaction) TransferCue(from, to Address, id uint64) error {
	owner, ok := tx.state.owners[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCue, ID: id}
	}
	if to.IsNull() {
		return domain.PreconditionError{Op: "transfer", Reason: "recipient is the null address"}
	}
	if owner != from {
		return domain.PreconditionError{Op: "transfer", Reason: fmt.Sprintf("cue %d is not owned by %s", id, from)}
	}

	tx.state.owners[id] = to
	tx.state.balances[from]--
	if tx.state.balances[from] == 0 {
		delete(tx.state.balances, from)
	}
	tx.state.balances[to]++

	if prev, ok := tx.state.transferApprovals[id]; ok {
		delete(tx.state.transferApprovals, id)
		tx.recordChange(Change{
			Entity: domain.EntityTransferApproval,
			Action: domain.ActionDelete,
			Before: domain.ApprovalRecord{CueID: id, Delegate: prev},
		})
	}
	if prev, ok := tx.state.breedingApprovals[id]; ok {
		delete(tx.state.breedingApprovals, id)
		tx.recordChange(Change{
			Entity: domain.EntityBreedingApproval,
			Action: domain.ActionDelete,
			Before: domain.ApprovalRecord{CueID: id, Delegate: prev},
		})
	}
	tx.recordChange(Change{
		Entity: domain.EntityOwnership,
		Action: domain.ActionUpdate,
		Before: domain.OwnershipRecord{CueID: id, Owner: from},
		After:  domain.OwnershipRecord{CueID: id, Owner: to},
	})
	return nil
}

// UpdateCue mutates the cue's cooldown state. Changes to immutable fields
// abort the call.
func (tx *transaction) UpdateCue(id uint64, mutator func(*Cue) error) (Cue, error) {
	current, ok := tx.state.cues[id]
	if !ok {
		return Cue{}, domain.NotFoundError{Entity: domain.EntityCue, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Cue{}, err
	}
	current.ID = id
	if current.Genes != before.Genes || current.BirthTime != before.BirthTime ||
		current.BirthTick != before.BirthTick || current.Parents() != before.Parents() {
		return Cue{}, domain.PreconditionError{Op: "update", Reason: fmt.Sprintf("cue %d immutable fields changed", id)}
	}
	tx.state.cues[id] = current
	tx.recordChange(Change{Entity: domain.EntityCue, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// SetTransferApproval sets, overwrites, or clears the transfer delegation slot.
func (tx *transaction) SetTransferApproval(id uint64, delegate Address) error {
	return tx.setApproval(tx.state.transferApprovals, domain.EntityTransferApproval, id, delegate)
}

// SetBreedingApproval sets, overwrites, or clears the breeding delegation slot.
func (tx *transaction) SetBreedingApproval(id uint64, delegate Address) error {
	return tx.setApproval(tx.state.breedingApprovals, domain.EntityBreedingApproval, id, delegate)
}

func (tx *transaction) setApproval(slot map[uint64]Address, entity domain.EntityType, id uint64, delegate Address) error {
	if _, ok := tx.state.cues[id]; !ok {
		return domain.NotFoundError{Entity: domain.EntityCue, ID: id}
	}
	prev, had := slot[id]
	if delegate.IsNull() {
		if !had {
			return nil
		}
		delete(slot, id)
		tx.recordChange(Change{
			Entity: entity,
			Action: domain.ActionDelete,
			Before: domain.ApprovalRecord{CueID: id, Delegate: prev},
		})
		return nil
	}
	if had && prev == delegate {
		// idempotent re-approval; no change recorded
		return nil
	}
	slot[id] = delegate
	change := Change{Entity: entity, Action: domain.ActionCreate, After: domain.ApprovalRecord{CueID: id, Delegate: delegate}}
	if had {
		change.Action = domain.ActionUpdate
		change.Before = domain.ApprovalRecord{CueID: id, Delegate: prev}
	}
	tx.recordChange(change)
	return nil
}

// IncrementGenesisCount advances the cumulative genesis counter.
func (tx *transaction) IncrementGenesisCount() uint64 {
	before := tx.state.genesisCount
	tx.state.genesisCount++
	tx.recordChange(Change{
		Entity: domain.EntityGenesisCounter,
		Action: domain.ActionUpdate,
		Before: before,
		After:  tx.state.genesisCount,
	})
	return tx.state.genesisCount
}

// Read helpers ---------------------------------------------------------------

// GetCue retrieves a cue by ID from committed state.
func (s *Store) GetCue(id uint64) (Cue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.cues[id]
	return c, ok
}

// OwnerOf returns the committed owner assignment for id.
func (s *Store) OwnerOf(id uint64) (Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.state.owners[id]
	return owner, ok
}

// BalanceOf returns the committed balance count for owner.
func (s *Store) BalanceOf(owner Address) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.balances[owner]
}

// TransferApproval returns the committed transfer delegate for id.
func (s *Store) TransferApproval(id uint64) (Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.transferApprovals[id]
	return a, ok
}

// BreedingApproval returns the committed breeding delegate for id.
func (s *Store) BreedingApproval(id uint64) (Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.breedingApprovals[id]
	return a, ok
}

// TokensOfOwner returns all IDs currently owned by owner, ascending. The scan
// is O(total supply) and intended for off-path reporting only.
func (s *Store) TokensOfOwner(owner Address) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tokensOfOwner(&s.state, owner)
}

// TotalSupply returns the committed count of allocated cues.
func (s *Store) TotalSupply() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.nextID - 1
}

// GenesisCount returns the committed genesis issuance counter.
func (s *Store) GenesisCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.genesisCount
}
