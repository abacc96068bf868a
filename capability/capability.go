// Package capability scopes access to validator state behind narrow
// interfaces, the way the teacher SDK grants module-scoped capabilities
// rather than passing raw stores around. This module has no modules in
// the SDK sense — one process, one account/vote namespace — so the
// manager here grants capabilities by role (RPC ingress, snapshot
// assembly) instead of by prefixed module namespace.
package capability

import (
	"errors"
	"sync"

	"github.com/blockberries/fquorum/store"
)

// ErrCapabilityNil is returned when a capability is nil.
var ErrCapabilityNil = errors.New("capability is nil")

// CapabilityManager hands out scoped capabilities over a validator's
// account store and validator set. Unlike the teacher's manager, it does
// not namespace by module prefix: there is exactly one account store and
// one validator set per process, and capabilities differ only in which
// operations they expose, not in which keyspace they see.
type CapabilityManager struct {
	mu       sync.RWMutex
	accounts *store.AccountStore
	vset     *store.ValidatorSetStore
	granted  map[string]bool
}

// NewCapabilityManager builds a manager over the given account store and
// validator set.
func NewCapabilityManager(accounts *store.AccountStore, vset *store.ValidatorSetStore) *CapabilityManager {
	return &CapabilityManager{
		accounts: accounts,
		vset:     vset,
		granted:  make(map[string]bool),
	}
}

// GrantAccountCapability grants role full read/mutate access to the
// account store (used by the certificate processor).
func (cm *CapabilityManager) GrantAccountCapability(role string) (AccountCapability, error) {
	if cm == nil {
		return nil, ErrCapabilityNil
	}
	cm.mu.Lock()
	cm.granted[role] = true
	cm.mu.Unlock()
	return &accountCapability{role: role, store: cm.accounts}, nil
}

// GrantReadOnlyAccountCapability grants role read-only access to the
// account store (used by get_recovery_info and other query paths that
// must never mutate state).
func (cm *CapabilityManager) GrantReadOnlyAccountCapability(role string) (ReadOnlyAccountCapability, error) {
	if cm == nil {
		return nil, ErrCapabilityNil
	}
	cm.mu.Lock()
	cm.granted[role] = true
	cm.mu.Unlock()
	return &accountCapability{role: role, store: cm.accounts}, nil
}

// GrantValidatorSetCapability grants role read-only membership queries
// over the configured validator set.
func (cm *CapabilityManager) GrantValidatorSetCapability(role string) (ValidatorSetCapability, error) {
	if cm == nil {
		return nil, ErrCapabilityNil
	}
	cm.mu.Lock()
	cm.granted[role] = true
	cm.mu.Unlock()
	return &validatorSetCapability{role: role, set: cm.vset}, nil
}

// IsGranted reports whether role has ever been granted a capability.
func (cm *CapabilityManager) IsGranted(role string) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.granted[role]
}
