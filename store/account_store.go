package store

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/types"
)

// AccountStore holds the live, lock-bearing *types.Account for every
// address a validator has seen (spec §4.1). Unlike a generic
// ObjectStore-backed table, Get always returns the same pointer for a
// given address so the certificate processor's per-account mutex (spec
// §5) is actually exclusive across callers; persistence, when enabled,
// is a side effect on top of that in-memory map rather than the
// primary storage path.
type AccountStore struct {
	mu       sync.Mutex
	accounts map[crypto.Address]*types.Account

	// backing persists account snapshots when durability is configured
	// (spec §6: "durability is a composable concern"). nil means
	// in-memory only.
	backing ObjectStore[*types.Account]
}

// NewAccountStore creates an in-memory-only account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[crypto.Address]*types.Account)}
}

// NewDurableAccountStore creates an account store that persists
// snapshots to backing on Persist, and loads from it on first Get for a
// previously unseen address.
func NewDurableAccountStore(backing BackingStore) *AccountStore {
	serializer := NewJSONSerializer[*types.Account]()
	cached := NewCachedObjectStore(backing, serializer, 10000, 100000)
	return &AccountStore{
		accounts: make(map[crypto.Address]*types.Account),
		backing:  cached,
	}
}

// Get returns the account for addr, auto-creating it with defaults (zero
// balance, nonce 0, finalised -1) if it has never been referenced (spec
// §4.1, §3 "Lifecycle"). The returned pointer is stable for the life of
// the process; callers mutate it only via Account.WithLock.
func (s *AccountStore) Get(ctx context.Context, addr crypto.Address) (*types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.accounts[addr]; ok {
		return a, nil
	}

	a := types.NewAccount(addr)
	if s.backing != nil {
		persisted, err := s.backing.Get(ctx, addr.Bytes())
		switch {
		case err == nil:
			a = persisted
		case errors.Is(err, ErrNotFound):
			// fall through with freshly-initialised defaults
		default:
			return nil, err
		}
	}

	s.accounts[addr] = a
	return a, nil
}

// SeedGenesis seeds balances for a set of addresses at startup (spec
// §4.1 "seed_genesis"). Must be called before any transaction traffic;
// it does not merge with existing balances.
func (s *AccountStore) SeedGenesis(balances map[crypto.Address]*big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for addr, bal := range balances {
		a := types.NewAccount(addr)
		a.WithLock(func(acc *types.Account) {
			acc.Balance = new(big.Int).Set(bal)
		})
		s.accounts[addr] = a
	}
}

// Persist writes the current snapshot of addr's account to the backing
// store. No-op if the store is in-memory only.
func (s *AccountStore) Persist(ctx context.Context, addr crypto.Address) error {
	if s.backing == nil {
		return nil
	}

	s.mu.Lock()
	a, ok := s.accounts[addr]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if err := s.backing.Set(ctx, addr.Bytes(), a); err != nil {
		return err
	}
	return s.backing.Flush(ctx)
}

// Len reports the number of distinct addresses seen so far.
func (s *AccountStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}
