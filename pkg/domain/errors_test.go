package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	notFound := NotFoundError{Entity: EntityCue, ID: 7}
	precondition := PreconditionError{Op: "transfer", Reason: "caller does not own cue"}
	capacity := CapacityError{Op: "create", Reason: "ceiling reached"}

	if !IsNotFound(notFound) || IsNotFound(precondition) || IsNotFound(capacity) {
		t.Fatalf("not-found classification wrong")
	}
	if !IsPrecondition(precondition) || IsPrecondition(notFound) {
		t.Fatalf("precondition classification wrong")
	}
	if !IsCapacity(capacity) || IsCapacity(precondition) {
		t.Fatalf("capacity classification wrong")
	}
}

func TestErrorClassificationThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("issue genesis: %w", CapacityError{Op: "issue_genesis", Reason: "ceiling"})
	if !IsCapacity(wrapped) {
		t.Fatalf("capacity error should classify through wrapping")
	}
	var ce CapacityError
	if !errors.As(wrapped, &ce) || ce.Op != "issue_genesis" {
		t.Fatalf("errors.As should recover the original value")
	}
}

func TestRuleViolationError(t *testing.T) {
	res := Result{Violations: []Violation{
		{Rule: "ownership_conservation", Severity: SeverityBlock, Message: "balance drift"},
		{Rule: "lineage_integrity", Severity: SeverityWarn},
	}}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	err := RuleViolationError{Result: res}
	if err.Error() == "" {
		t.Fatalf("expected violation message")
	}
	var merged Result
	merged.Merge(res)
	merged.Merge(Result{Violations: []Violation{{Rule: "x", Severity: SeverityLog}}})
	if len(merged.Violations) != 3 {
		t.Fatalf("merge should accumulate, got %d", len(merged.Violations))
	}
}
