package store

import (
	"sync"

	"github.com/blockberries/fquorum/crypto"
)

// ValidatorSetStore holds the static, process-wide configured set of
// validator addresses (spec §6 Parameters). Unlike the staking/
// delegation validator directory this is adapted from, membership here
// is fixed at startup from configuration, not derived from on-chain
// stake or delegation: spec §1's Non-goals exclude any notion of a
// dynamic validator set ("no view-change / leader rotation").
type ValidatorSetStore struct {
	mu         sync.RWMutex
	validators map[crypto.Address]struct{}
	ordered    []crypto.Address
}

// NewValidatorSetStore builds a validator set from a fixed address list.
func NewValidatorSetStore(addrs []crypto.Address) *ValidatorSetStore {
	set := &ValidatorSetStore{
		validators: make(map[crypto.Address]struct{}, len(addrs)),
		ordered:    make([]crypto.Address, 0, len(addrs)),
	}
	for _, a := range addrs {
		if _, ok := set.validators[a]; ok {
			continue
		}
		set.validators[a] = struct{}{}
		set.ordered = append(set.ordered, a)
	}
	return set
}

// Contains reports whether addr is a configured validator (spec §4.8b).
func (s *ValidatorSetStore) Contains(addr crypto.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.validators[addr]
	return ok
}

// Size returns n, the configured validator count.
func (s *ValidatorSetStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// All returns a defensive copy of the validator address list, in
// configuration order.
func (s *ValidatorSetStore) All() []crypto.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crypto.Address, len(s.ordered))
	copy(out, s.ordered)
	return out
}
