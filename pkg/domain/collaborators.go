package domain

import (
	"context"
	"time"

	"github.com/holiman/uint256"
)

// Role identifies an administrative capability checked through the
// access-control collaborator.
type Role string

// Administrative roles gating privileged operations.
const (
	// RoleAdmin gates genesis issuance, collaborator wiring, and unpause.
	RoleAdmin Role = "admin"
	// RoleFinance gates balance sweeps and fee parameters.
	RoleFinance Role = "finance"
	// RoleOps gates pause and other operational switches.
	RoleOps Role = "ops"
)

// RoleAuthorizer is the access-control collaborator. The core treats it
// purely as a predicate; role governance lives outside this module.
type RoleAuthorizer interface {
	Authorize(caller Address, role Role) bool
}

// SaleAuction is the external auction collaborator that escrows genesis cues
// and feeds the issuance price back into the core.
type SaleAuction interface {
	// Address is the collaborator's ledger address. Direct transfers to it
	// are rejected; cues reach it only via the approve + TransferFrom path.
	Address() Address

	// IsSaleAuction is a capability probe checked when the collaborator is
	// wired, rejecting a misconfigured address.
	IsSaleAuction() bool

	// CreateAuction escrows an already-approved cue into a new auction.
	CreateAuction(ctx context.Context, cueID uint64, startPrice, endPrice *uint256.Int, duration time.Duration, seller Address) error

	// AverageGenesisSalePrice returns the trailing average over recent
	// genesis sales, zero when no history exists.
	AverageGenesisSalePrice(ctx context.Context) (*uint256.Int, error)
}

// Withdrawable is an optional auction capability: a balance the finance role
// can sweep back to the system.
type Withdrawable interface {
	Withdraw(ctx context.Context, to Address) (*uint256.Int, error)
}
