package types

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/blockberries/fquorum/crypto"
)

// Account is a single address's mutable state (spec §3). Unlike the
// teacher's multi-denomination, multisig Account, this module has one
// asset and one signer per address, so Authority/Coins collapse into a
// plain balance and nonce.
type Account struct {
	mu sync.RWMutex

	Address crypto.Address `json:"address"`

	// Balance is non-negative and arbitrary-precision, per spec §3.
	Balance *big.Int `json:"balance"`

	// Nonce is the next nonce the validator will vote for.
	Nonce uint64 `json:"nonce"`

	// Pending indicates a vote has been cast at Nonce but it has not yet
	// advanced.
	Pending bool `json:"pending"`

	// Finalised is the highest nonce whose payment effect has been
	// applied. -1 means nothing has been applied yet.
	Finalised int64 `json:"finalised"`
}

// NewAccount returns a default-initialised account for addr: zero
// balance, nonce 0, not pending, finalised -1 (spec §3).
func NewAccount(addr crypto.Address) *Account {
	return &Account{
		Address:   addr,
		Balance:   big.NewInt(0),
		Nonce:     0,
		Pending:   false,
		Finalised: -1,
	}
}

// Snapshot is a point-in-time, lock-free copy of an Account's fields,
// safe to read after the lock is released.
type Snapshot struct {
	Address   crypto.Address
	Balance   *big.Int
	Nonce     uint64
	Pending   bool
	Finalised int64
}

// View returns a defensive-copy snapshot of the account.
func (a *Account) View() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Snapshot{
		Address:   a.Address,
		Balance:   new(big.Int).Set(a.Balance),
		Nonce:     a.Nonce,
		Pending:   a.Pending,
		Finalised: a.Finalised,
	}
}

// WithLock runs fn with the account's lock held, giving the certificate
// processor exclusive mutation access (spec §5: "no concurrent mutation
// within one account permitted").
func (a *Account) WithLock(fn func(a *Account)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a)
}

// CheckInvariants validates I1/I2 (spec §8) hold for the account's
// current in-memory state. Intended for tests and assertions, not the
// hot path.
func (a *Account) CheckInvariants() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.Finalised >= int64(a.Nonce) {
		return fmt.Errorf("types: invariant violated: finalised (%d) >= nonce (%d)", a.Finalised, a.Nonce)
	}
	if a.Balance.Sign() < 0 {
		return fmt.Errorf("types: invariant violated: negative balance %s", a.Balance.String())
	}
	return nil
}
