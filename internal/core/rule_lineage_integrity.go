package core

import (
	"context"
	"fmt"

	"cuecore/pkg/domain"
)

// LineageIntegrityRule enforces parent/offspring constraints: genesis cues
// carry all-zero lineage, bred cues reference three pairwise-distinct,
// previously-allocated parents.
func LineageIntegrityRule() domain.Rule {
	return lineageIntegrityRule{}
}

type lineageIntegrityRule struct{}

func (lineageIntegrityRule) Name() string { return "lineage_integrity" }

func (lineageIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	for _, child := range view.ListCues() {
		if child.IsGenesis() {
			continue
		}
		parents := child.Parents()
		seen := make(map[uint64]struct{}, len(parents))
		for _, parentID := range parents {
			if parentID == 0 {
				res.Violations = append(res.Violations, lineageViolation(child.ID,
					fmt.Sprintf("cue %d mixes null and real parent references", child.ID)))
				continue
			}
			if _, dup := seen[parentID]; dup {
				res.Violations = append(res.Violations, lineageViolation(child.ID,
					fmt.Sprintf("cue %d lists parent %d multiple times", child.ID, parentID)))
				continue
			}
			seen[parentID] = struct{}{}

			if parentID >= child.ID {
				res.Violations = append(res.Violations, lineageViolation(child.ID,
					fmt.Sprintf("cue %d references parent %d not older than itself", child.ID, parentID)))
				continue
			}
			if _, ok := view.FindCue(parentID); !ok {
				res.Violations = append(res.Violations, lineageViolation(child.ID,
					fmt.Sprintf("cue %d references missing parent %d", child.ID, parentID)))
			}
		}
	}
	return res, nil
}

func lineageViolation(id uint64, message string) domain.Violation {
	return domain.Violation{
		Rule:     "lineage_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntityCue,
		EntityID: id,
	}
}
