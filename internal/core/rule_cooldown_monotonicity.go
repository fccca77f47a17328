package core

import (
	"context"
	"fmt"

	"cuecore/pkg/domain"
)

// CooldownMonotonicityRule checks that cooldown escalation indexes only move
// forward and never leave the fixed table.
func CooldownMonotonicityRule() domain.Rule {
	return cooldownMonotonicityRule{}
}

type cooldownMonotonicityRule struct{}

func (cooldownMonotonicityRule) Name() string { return "cooldown_monotonicity" }

func (cooldownMonotonicityRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityCue || change.Action != domain.ActionUpdate {
			continue
		}
		before, okB := change.Before.(domain.Cue)
		after, okA := change.After.(domain.Cue)
		if !okB || !okA {
			continue
		}
		if after.CooldownIndex < before.CooldownIndex {
			res.Violations = append(res.Violations, cooldownViolation(after.ID,
				fmt.Sprintf("cue %d cooldown index regressed from %d to %d", after.ID, before.CooldownIndex, after.CooldownIndex)))
		}
		if after.CooldownIndex > domain.LastCooldownIndex {
			res.Violations = append(res.Violations, cooldownViolation(after.ID,
				fmt.Sprintf("cue %d cooldown index %d exceeds the table", after.ID, after.CooldownIndex)))
		}
	}
	return res, nil
}

func cooldownViolation(id uint64, message string) domain.Violation {
	return domain.Violation{
		Rule:     "cooldown_monotonicity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntityCue,
		EntityID: id,
	}
}
