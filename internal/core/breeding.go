package core

import (
	"context"
	"fmt"
	"time"

	"cuecore/pkg/domain"
)

// CanBreed reports whether the three given cues could be bred right now:
// all must exist, be pairwise distinct, and be past their cooldowns. It does
// not inspect ownership; Breed enforces that at execution time.
func (s *Service) CanBreed(ctx context.Context, a, b, c uint64) (bool, error) {
	var ready bool
	err := s.instrument(ctx, "can_breed", func(ctx context.Context) error {
		for _, id := range []uint64{a, b, c} {
			if id == 0 {
				return domain.PreconditionError{Op: "can_breed", Reason: "parent ID must be positive"}
			}
		}
		if a == b || a == c || b == c {
			return nil
		}
		now := s.ticks()
		return s.store.View(ctx, func(view TransactionView) error {
			for _, id := range []uint64{a, b, c} {
				cue, ok := view.FindCue(id)
				if !ok {
					return domain.NotFoundError{Entity: EntityCue, ID: id}
				}
				if !cue.Ready(now) {
					return nil
				}
			}
			ready = true
			return nil
		})
	})
	if err != nil {
		return false, err
	}
	return ready, nil
}

// Breed creates one offspring from three distinct, cooled-down parents owned
// by caller. Each parent's cooldown is re-triggered and escalated; the
// offspring is born ready (cooldown index zero, no end tick) and is owned by
// the owner of the first parent.
func (s *Service) Breed(ctx context.Context, caller Address, a, b, c uint64, genes string) (uint64, error) {
	var childID uint64
	err := s.instrument(ctx, "breed", func(ctx context.Context) error {
		if err := s.requireActive("breed"); err != nil {
			return err
		}
		if genes == "" {
			return domain.PreconditionError{Op: "breed", Reason: "genes must not be empty"}
		}
		for _, id := range []uint64{a, b, c} {
			if id == 0 {
				return domain.PreconditionError{Op: "breed", Reason: "parent ID must be positive"}
			}
		}
		if a == b || a == c || b == c {
			return domain.PreconditionError{Op: "breed", Reason: "parents must be pairwise distinct"}
		}
		now := s.ticks()
		var events []Event
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			view := tx.Snapshot()
			for _, id := range []uint64{a, b, c} {
				cue, ok := view.FindCue(id)
				if !ok {
					return domain.NotFoundError{Entity: EntityCue, ID: id}
				}
				owner, _ := view.OwnerOf(id)
				if owner != caller {
					return domain.PreconditionError{Op: "breed", Reason: fmt.Sprintf("caller does not own parent %d", id)}
				}
				if !cue.Ready(now) {
					return domain.PreconditionError{Op: "breed", Reason: fmt.Sprintf("parent %d is still cooling down", id)}
				}
			}
			for _, id := range []uint64{a, b, c} {
				if _, err := tx.UpdateCue(id, func(cue *Cue) error {
					domain.TriggerCooldown(cue, now, s.cfg.TickInterval)
					return nil
				}); err != nil {
					return err
				}
			}
			child, err := tx.CreateCue(CueSpec{
				Genes:     genes,
				Parents:   [3]uint64{a, b, c},
				Owner:     caller,
				BirthTick: now,
			})
			if err != nil {
				return err
			}
			childID = child.ID
			birth := time.Now().UTC()
			events = append(events,
				Event{
					Type:    domain.EventBirth,
					CueID:   child.ID,
					Owner:   caller,
					Parents: [3]uint64{a, b, c},
					Genes:   genes,
					Tick:    now,
					Time:    birth,
				},
				Event{
					Type:  domain.EventTransfer,
					CueID: child.ID,
					From:  domain.NullAddress,
					To:    caller,
					Tick:  now,
					Time:  birth,
				},
			)
			return nil
		})
		if err != nil {
			return err
		}
		s.publish(events...)
		s.logger.Info("cue bred", "child", childID, "parents", []uint64{a, b, c})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return childID, nil
}
