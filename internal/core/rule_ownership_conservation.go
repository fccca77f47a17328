package core

import (
	"context"
	"fmt"

	"cuecore/pkg/domain"
)

// OwnershipConservationRule enforces the conservation laws of the ledger:
// every allocated cue has exactly one non-null owner, the cached balance
// counts match the ownership map exactly, their sum equals total supply, and
// the ID space stays dense.
func OwnershipConservationRule() domain.Rule {
	return ownershipConservationRule{}
}

type ownershipConservationRule struct{}

func (ownershipConservationRule) Name() string { return "ownership_conservation" }

func (ownershipConservationRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	cues := view.ListCues()
	supply := view.TotalSupply()

	if uint64(len(cues)) != supply {
		res.Violations = append(res.Violations, conservationViolation(0,
			fmt.Sprintf("entity table holds %d cues but total supply is %d", len(cues), supply)))
	}

	counted := make(map[domain.Address]int)
	for _, cue := range cues {
		if cue.ID < 1 || cue.ID > supply {
			res.Violations = append(res.Violations, conservationViolation(cue.ID,
				fmt.Sprintf("cue %d outside the dense ID range [1,%d]", cue.ID, supply)))
		}
		owner, ok := view.OwnerOf(cue.ID)
		if !ok || owner.IsNull() {
			res.Violations = append(res.Violations, conservationViolation(cue.ID,
				fmt.Sprintf("cue %d has no owner", cue.ID)))
			continue
		}
		counted[owner]++
	}

	balances := view.Balances()
	for owner, want := range counted {
		if balances[owner] != want {
			res.Violations = append(res.Violations, conservationViolation(0,
				fmt.Sprintf("balance of %s is %d, ownership map says %d", owner, balances[owner], want)))
		}
	}
	var total int
	for owner, count := range balances {
		total += count
		if count < 0 {
			res.Violations = append(res.Violations, conservationViolation(0,
				fmt.Sprintf("balance of %s is negative", owner)))
		}
		if _, ok := counted[owner]; !ok {
			res.Violations = append(res.Violations, conservationViolation(0,
				fmt.Sprintf("balance entry for %s has no owned cues", owner)))
		}
	}
	if uint64(total) != supply {
		res.Violations = append(res.Violations, conservationViolation(0,
			fmt.Sprintf("balances sum to %d but total supply is %d", total, supply)))
	}
	return res, nil
}

func conservationViolation(id uint64, message string) domain.Violation {
	return domain.Violation{
		Rule:     "ownership_conservation",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntityOwnership,
		EntityID: id,
	}
}
