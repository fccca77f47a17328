package core

import (
	"cuecore/pkg/domain"
)

// GetCue returns the immutable record plus cooldown state for id.
func (s *Service) GetCue(id uint64) (Cue, error) {
	cue, ok := s.store.GetCue(id)
	if !ok {
		return Cue{}, domain.NotFoundError{Entity: EntityCue, ID: id}
	}
	return cue, nil
}

// Exists reports whether id has been allocated. IDs are dense, so the check
// reduces to a range test against the current supply.
func (s *Service) Exists(id uint64) bool {
	return id >= 1 && id <= s.store.TotalSupply()
}

// TotalSupply returns the count of cues ever created. Cues are never
// destroyed, so this equals the highest allocated ID.
func (s *Service) TotalSupply() uint64 {
	return s.store.TotalSupply()
}

// GenesisCount returns how many genesis cues have been issued against the
// lifetime cap.
func (s *Service) GenesisCount() uint64 {
	return s.store.GenesisCount()
}

// RemainingGenesisQuota returns how many genesis issuances are still allowed.
func (s *Service) RemainingGenesisQuota() uint64 {
	count := s.store.GenesisCount()
	if count >= s.cfg.GenesisCap {
		return 0
	}
	return s.cfg.GenesisCap - count
}
