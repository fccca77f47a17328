package domain

import "time"

// EventType identifies a ledger event emitted after a committed operation.
type EventType string

// Ledger event types.
const (
	// EventTransfer records an ownership change, including the null -> owner
	// assignment at creation.
	EventTransfer EventType = "transfer"
	// EventApproval records a caller-initiated transfer delegation. The
	// silent internal variant used for auction escrow emits no event.
	EventApproval EventType = "approval"
	// EventBreedingApproval records a breeding delegation.
	EventBreedingApproval EventType = "breeding_approval"
	// EventBirth records a cue creation with full lineage and genes.
	EventBirth EventType = "birth"
	// EventAuctionEscrow records a genesis cue handed to the sale auction.
	EventAuctionEscrow EventType = "auction_escrow"
	// EventPaused and EventUnpaused record the cross-cutting pause switch.
	EventPaused   EventType = "paused"
	EventUnpaused EventType = "unpaused"
)

// Event is the journal record for one ledger occurrence. Fields not relevant
// to the event type are left zero.
type Event struct {
	Type    EventType `json:"type"`
	CueID   uint64    `json:"cue_id,omitempty"`
	From    Address   `json:"from,omitempty"`
	To      Address   `json:"to,omitempty"`
	Owner   Address   `json:"owner,omitempty"`
	Parents [3]uint64 `json:"parents,omitempty"`
	Genes   string    `json:"genes,omitempty"`
	Tick    uint64    `json:"tick,omitempty"`
	Time    time.Time `json:"time"`
}

// EventSink consumes committed ledger events. Implementations must not block
// the caller for long; publication happens after commit, outside the store
// lock.
type EventSink interface {
	Publish(event Event)
}
