// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by cuecore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityCue identifies an individual cue record.
	EntityCue EntityType = "cue"
	// EntityOwnership identifies the owner assignment of a cue.
	EntityOwnership EntityType = "ownership"
	// EntityTransferApproval identifies the single-slot transfer delegation of a cue.
	EntityTransferApproval EntityType = "transfer_approval"
	// EntityBreedingApproval identifies the single-slot breeding delegation of a cue.
	EntityBreedingApproval EntityType = "breeding_approval"
	// EntityGenesisCounter identifies the cumulative genesis issuance counter.
	EntityGenesisCounter EntityType = "genesis_counter"
)

// Address identifies an account that can own cues. The empty string is the
// null address; it never owns anything.
type Address string

// NullAddress is the zero value for Address.
const NullAddress Address = ""

// IsNull reports whether the address is the null address.
func (a Address) IsNull() bool { return a == NullAddress }

// MaxCueID is the hard ceiling of the ID allocation width. Allocating or
// referencing an ID beyond it aborts the whole operation.
const MaxCueID uint64 = 1<<32 - 1

// Cue represents one collectible entity tracked by the registry. IDs are
// dense and start at 1; ID 0 is reserved as the null-parent sentinel and is
// never allocated.
type Cue struct {
	ID              uint64    `json:"id"`
	Genes           string    `json:"genes"`
	BirthTime       time.Time `json:"birth_time"`
	BirthTick       uint64    `json:"birth_tick"`
	CooldownEndTick uint64    `json:"cooldown_end_tick"`
	CooldownIndex   uint8     `json:"cooldown_index"`
	Parent1         uint64    `json:"parent1_id"`
	Parent2         uint64    `json:"parent2_id"`
	Parent3         uint64    `json:"parent3_id"`
}

// Parents returns the lineage references in declaration order.
func (c Cue) Parents() [3]uint64 { return [3]uint64{c.Parent1, c.Parent2, c.Parent3} }

// IsGenesis reports whether the cue was created through the genesis path.
func (c Cue) IsGenesis() bool { return c.Parent1 == 0 && c.Parent2 == 0 && c.Parent3 == 0 }

// CueSpec carries the immutable creation parameters for a new cue. The ID is
// allocated by the store.
type CueSpec struct {
	Genes     string
	Parents   [3]uint64
	Owner     Address
	BirthTick uint64
}

// OwnershipRecord captures the owner assignment of one cue at a point in time.
type OwnershipRecord struct {
	CueID uint64  `json:"cue_id"`
	Owner Address `json:"owner"`
}

// ApprovalRecord captures a single-slot delegation for one cue.
type ApprovalRecord struct {
	CueID    uint64  `json:"cue_id"`
	Delegate Address `json:"delegate"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate the mutations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	// ActionDelete indicates an entity slot was cleared.
	ActionDelete Action = "delete"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID uint64
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
