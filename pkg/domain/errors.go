package domain

import (
	"errors"
	"fmt"
)

// NotFoundError reports a query against an entity that was never allocated.
// It is distinct from PreconditionError because it arises from read-only
// lookups as well as mutations.
type NotFoundError struct {
	Entity EntityType
	ID     uint64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// PreconditionError reports caller input that fails an operation's
// preconditions. The operation aborts with no state change.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %s", e.Op, e.Reason)
}

// CapacityError reports a hard, non-retryable limit: the genesis issuance
// ceiling or the ID allocation width.
type CapacityError struct {
	Op     string
	Reason string
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("%s: capacity exceeded: %s", e.Op, e.Reason)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe PreconditionError
	return errors.As(err, &pe)
}

// IsCapacity reports whether err is (or wraps) a CapacityError.
func IsCapacity(err error) bool {
	var ce CapacityError
	return errors.As(err, &ce)
}
