package core

import "cuecore/pkg/domain"

type (
	Address            = domain.Address
	Cue                = domain.Cue
	CueSpec            = domain.CueSpec
	EntityType         = domain.EntityType
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Severity           = domain.Severity
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	Event              = domain.Event
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityCue              = domain.EntityCue
	EntityOwnership        = domain.EntityOwnership
	EntityTransferApproval = domain.EntityTransferApproval
	EntityBreedingApproval = domain.EntityBreedingApproval
	EntityGenesisCounter   = domain.EntityGenesisCounter
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

// NewRulesEngine re-exports the domain constructor for callers wiring custom
// rule sets.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }
