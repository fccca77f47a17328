// Package accessctl provides role authorization for the privileged registry
// operations (pause, genesis issuance, balance sweeps).
package accessctl

import (
	"os"
	"strings"
	"sync"

	"cuecore/pkg/domain"
)

// Role assignment environment variables. Each holds a comma-separated list
// of addresses.
const (
	EnvAdminAddresses   = "CUECORE_ROLE_ADMIN"
	EnvFinanceAddresses = "CUECORE_ROLE_FINANCE"
	EnvOpsAddresses     = "CUECORE_ROLE_OPS"
)

// Static is a fixed role table. Grants can be added at runtime but never
// revoked; deployments needing revocation rebuild the authorizer.
type Static struct {
	mu     sync.RWMutex
	grants map[domain.Role]map[domain.Address]struct{}
}

var _ domain.RoleAuthorizer = (*Static)(nil)

// NewStatic builds an authorizer from an explicit role table.
func NewStatic(grants map[domain.Role][]domain.Address) *Static {
	s := &Static{grants: make(map[domain.Role]map[domain.Address]struct{})}
	for role, addrs := range grants {
		for _, addr := range addrs {
			s.grant(role, addr)
		}
	}
	return s
}

// FromEnv builds an authorizer from the CUECORE_ROLE_* environment variables.
func FromEnv() *Static {
	return NewStatic(map[domain.Role][]domain.Address{
		domain.RoleAdmin:   splitAddresses(os.Getenv(EnvAdminAddresses)),
		domain.RoleFinance: splitAddresses(os.Getenv(EnvFinanceAddresses)),
		domain.RoleOps:     splitAddresses(os.Getenv(EnvOpsAddresses)),
	})
}

func splitAddresses(raw string) []domain.Address {
	var out []domain.Address
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, domain.Address(part))
		}
	}
	return out
}

func (s *Static) grant(role domain.Role, addr domain.Address) {
	if addr.IsNull() {
		return
	}
	set, ok := s.grants[role]
	if !ok {
		set = make(map[domain.Address]struct{})
		s.grants[role] = set
	}
	set[addr] = struct{}{}
}

// Grant adds a role to an address.
func (s *Static) Grant(role domain.Role, addr domain.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grant(role, addr)
}

// Authorize reports whether caller holds role.
func (s *Static) Authorize(caller domain.Address, role domain.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.grants[role]
	if !ok {
		return false
	}
	_, ok = set[caller]
	return ok
}
