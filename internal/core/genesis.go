package core

import (
	"context"
	"time"

	"cuecore/pkg/domain"

	"github.com/holiman/uint256"
)

// NextGenesisPrice computes the starting price for the next genesis auction:
// the collaborator's rolling average sale price plus fifty percent, floored
// at the configured minimum. An average wider than 128 bits means the price
// feedback loop has left any plausible economic range and is refused rather
// than silently wrapped.
func (s *Service) NextGenesisPrice(ctx context.Context) (*uint256.Int, error) {
	auction := s.saleAuction()
	if auction == nil {
		return nil, domain.PreconditionError{Op: "next_genesis_price", Reason: "sale auction not wired"}
	}
	avg, err := auction.AverageGenesisSalePrice(ctx)
	if err != nil {
		return nil, err
	}
	if avg == nil {
		avg = uint256.NewInt(0)
	}
	if avg.BitLen() > 128 {
		return nil, domain.CapacityError{Op: "next_genesis_price", Reason: "average sale price exceeds 128 bits"}
	}
	price := new(uint256.Int).Rsh(avg, 1)
	price.Add(price, avg)
	if price.Lt(s.cfg.MinGenesisPrice) {
		price.Set(s.cfg.MinGenesisPrice)
	}
	return price, nil
}

// IssueGenesis mints a parentless cue owned by the system address, escrows it
// with the sale auction via a silent internal approval, and opens a declining
// auction from the feedback price down to zero. The auction placement runs
// inside the transaction so a collaborator failure aborts the mint and the
// counter increment together.
func (s *Service) IssueGenesis(ctx context.Context, caller Address, genes string) (uint64, error) {
	var cueID uint64
	err := s.instrument(ctx, "issue_genesis", func(ctx context.Context) error {
		if err := s.requireActive("issue_genesis"); err != nil {
			return err
		}
		if err := s.requireRole("issue_genesis", caller, domain.RoleAdmin); err != nil {
			return err
		}
		if genes == "" {
			return domain.PreconditionError{Op: "issue_genesis", Reason: "genes must not be empty"}
		}
		auction := s.saleAuction()
		if auction == nil {
			return domain.PreconditionError{Op: "issue_genesis", Reason: "sale auction not wired"}
		}
		price, err := s.NextGenesisPrice(ctx)
		if err != nil {
			return err
		}
		now := s.ticks()
		var events []Event
		_, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			view := tx.Snapshot()
			if view.GenesisCount() >= s.cfg.GenesisCap {
				return domain.CapacityError{Op: "issue_genesis", Reason: "genesis issuance ceiling reached"}
			}
			cue, err := tx.CreateCue(CueSpec{
				Genes:     genes,
				Owner:     s.cfg.SystemAddress,
				BirthTick: now,
			})
			if err != nil {
				return err
			}
			cueID = cue.ID
			// Escrow approval is internal bookkeeping, not a user action:
			// no approval event is emitted for it.
			if err := tx.SetTransferApproval(cue.ID, auction.Address()); err != nil {
				return err
			}
			tx.IncrementGenesisCount()
			if err := auction.CreateAuction(ctx, cue.ID, price, uint256.NewInt(0), s.cfg.AuctionDuration, s.cfg.SystemAddress); err != nil {
				return err
			}
			birth := time.Now().UTC()
			events = append(events,
				Event{
					Type:  domain.EventBirth,
					CueID: cue.ID,
					Owner: s.cfg.SystemAddress,
					Genes: genes,
					Tick:  now,
					Time:  birth,
				},
				Event{
					Type:  domain.EventTransfer,
					CueID: cue.ID,
					From:  domain.NullAddress,
					To:    s.cfg.SystemAddress,
					Tick:  now,
					Time:  birth,
				},
				Event{
					Type:  domain.EventAuctionEscrow,
					CueID: cue.ID,
					From:  s.cfg.SystemAddress,
					To:    auction.Address(),
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
		s.logger.Info("genesis cue issued", "cue", cueID, "price", price.String())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cueID, nil
}
