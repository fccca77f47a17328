package core

import (
	"context"
	"fmt"
	"time"

	"cuecore/pkg/domain"
)

// BalanceOf returns the number of cues owned by owner. It never fails; an
// unknown owner has balance zero.
func (s *Service) BalanceOf(owner Address) int {
	return s.store.BalanceOf(owner)
}

// OwnerOf returns the owner of id, or a NotFoundError when id was never
// allocated. Post-creation ownerlessness is definitionally impossible.
func (s *Service) OwnerOf(id uint64) (Address, error) {
	owner, ok := s.store.OwnerOf(id)
	if !ok {
		return domain.NullAddress, domain.NotFoundError{Entity: EntityCue, ID: id}
	}
	return owner, nil
}

// TokensOfOwner returns every ID currently owned by owner, ascending. The
// underlying scan is O(total supply); reporting use only, never on-path.
func (s *Service) TokensOfOwner(owner Address) []uint64 {
	return s.store.TokensOfOwner(owner)
}

// TransferApproval returns the standing transfer delegate for id, if any.
func (s *Service) TransferApproval(id uint64) (Address, bool) {
	return s.store.TransferApproval(id)
}

// BreedingApproval returns the standing breeding delegate for id, if any.
func (s *Service) BreedingApproval(id uint64) (Address, bool) {
	return s.store.BreedingApproval(id)
}

// forbiddenRecipient rejects recipients no path may target: the null address
// and the system itself. Direct transfers additionally refuse the sale
// auction's address, since the auction takes cues through the approved-pull
// path, not by being handed them.
func (s *Service) forbiddenRecipient(op string, to Address) error {
	if to.IsNull() {
		return domain.PreconditionError{Op: op, Reason: "recipient is the null address"}
	}
	if to == s.cfg.SystemAddress {
		return domain.PreconditionError{Op: op, Reason: "recipient is the system address"}
	}
	return nil
}

// Transfer reassigns ownership of id from caller to to. It is the single
// public mutation path for owned cues: both approval channels are cleared and
// a transfer event is emitted.
func (s *Service) Transfer(ctx context.Context, caller, to Address, id uint64) error {
	return s.instrument(ctx, "transfer", func(ctx context.Context) error {
		if err := s.requireActive("transfer"); err != nil {
			return err
		}
		if err := s.forbiddenRecipient("transfer", to); err != nil {
			return err
		}
		if auction := s.saleAuction(); auction != nil && to == auction.Address() {
			return domain.PreconditionError{Op: "transfer", Reason: "cues reach the sale auction only via the approval path"}
		}
		var events []Event
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			view := tx.Snapshot()
			owner, ok := view.OwnerOf(id)
			if !ok {
				return domain.NotFoundError{Entity: EntityCue, ID: id}
			}
			if owner != caller {
				return domain.PreconditionError{Op: "transfer", Reason: fmt.Sprintf("caller does not own cue %d", id)}
			}
			if err := tx.TransferCue(caller, to, id); err != nil {
				return err
			}
			events = append(events, Event{
				Type:  domain.EventTransfer,
				CueID: id,
				From:  caller,
				To:    to,
				Tick:  s.ticks(),
				Time:  time.Now().UTC(),
			})
			return nil
		})
		if err != nil {
			return err
		}
		s.publish(events...)
		return nil
	})
}

// Approve sets, overwrites, or clears (null delegate) the transfer delegation
// for id. Caller must own id. Emits an approval event; the silent internal
// variant used on the genesis escrow path does not.
func (s *Service) Approve(ctx context.Context, caller Address, id uint64, delegate Address) error {
	return s.instrument(ctx, "approve", func(ctx context.Context) error {
		if err := s.requireActive("approve"); err != nil {
			return err
		}
		var events []Event
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if err := s.approveInTx(tx, "approve", caller, id, delegate, tx.SetTransferApproval); err != nil {
				return err
			}
			events = append(events, Event{
				Type:  domain.EventApproval,
				CueID: id,
				From:  caller,
				To:    delegate,
				Tick:  s.ticks(),
				Time:  time.Now().UTC(),
			})
			return nil
		})
		if err != nil {
			return err
		}
		s.publish(events...)
		return nil
	})
}

// ApproveBreeding sets, overwrites, or clears the breeding delegation channel
// for id. The channel is independent of transfer approval and is likewise
// cleared whenever ownership changes.
func (s *Service) ApproveBreeding(ctx context.Context, caller Address, id uint64, delegate Address) error {
	return s.instrument(ctx, "approve_breeding", func(ctx context.Context) error {
		if err := s.requireActive("approve_breeding"); err != nil {
			return err
		}
		var events []Event
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if err := s.approveInTx(tx, "approve_breeding", caller, id, delegate, tx.SetBreedingApproval); err != nil {
				return err
			}
			events = append(events, Event{
				Type:  domain.EventBreedingApproval,
				CueID: id,
				From:  caller,
				To:    delegate,
				Tick:  s.ticks(),
				Time:  time.Now().UTC(),
			})
			return nil
		})
		if err != nil {
			return err
		}
		s.publish(events...)
		return nil
	})
}

func (s *Service) approveInTx(tx Transaction, op string, caller Address, id uint64, delegate Address, set func(uint64, Address) error) error {
	view := tx.Snapshot()
	owner, ok := view.OwnerOf(id)
	if !ok {
		return domain.NotFoundError{Entity: EntityCue, ID: id}
	}
	if owner != caller {
		return domain.PreconditionError{Op: op, Reason: fmt.Sprintf("caller does not own cue %d", id)}
	}
	if delegate == caller {
		return domain.PreconditionError{Op: op, Reason: "cannot delegate to the owner"}
	}
	return set(id, delegate)
}

// TransferFrom moves id from its owner to to on behalf of the standing
// approved delegate. This is the path the auction collaborator uses to pull
// escrowed genesis cues into its own custody and later to deliver them to
// winning bidders, so the auction's address is a permitted recipient here.
func (s *Service) TransferFrom(ctx context.Context, caller, from, to Address, id uint64) error {
	return s.instrument(ctx, "transfer_from", func(ctx context.Context) error {
		if err := s.requireActive("transfer_from"); err != nil {
			return err
		}
		if err := s.forbiddenRecipient("transfer_from", to); err != nil {
			return err
		}
		var events []Event
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			view := tx.Snapshot()
			owner, ok := view.OwnerOf(id)
			if !ok {
				return domain.NotFoundError{Entity: EntityCue, ID: id}
			}
			if owner != from {
				return domain.PreconditionError{Op: "transfer_from", Reason: fmt.Sprintf("%s does not own cue %d", from, id)}
			}
			delegate, ok := view.TransferApproval(id)
			if !ok || delegate != caller {
				return domain.PreconditionError{Op: "transfer_from", Reason: fmt.Sprintf("caller is not the approved delegate for cue %d", id)}
			}
			if err := tx.TransferCue(from, to, id); err != nil {
				return err
			}
			events = append(events, Event{
				Type:  domain.EventTransfer,
				CueID: id,
				From:  from,
				To:    to,
				Tick:  s.ticks(),
				Time:  time.Now().UTC(),
			})
			return nil
		})
		if err != nil {
			return err
		}
		s.publish(events...)
		return nil
	})
}
