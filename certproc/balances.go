package certproc

import (
	"context"
	"math/big"

	"github.com/blockberries/fquorum/capability"
	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/types"
)

// accountBalances adapts an AccountCapability to effects.BalanceStore so
// R3's transfer (spec §4.6) can be applied through the teacher's effect
// executor rather than by hand-rolled mutation. Each call takes only its
// own account's lock; cross-account atomicity across Sub/Add is not
// guaranteed beyond what the in-memory, single-process reference core
// needs (spec §6: "the reference core is in-memory only").
type accountBalances struct {
	accounts capability.AccountCapability
}

func newAccountBalances(accounts capability.AccountCapability) *accountBalances {
	return &accountBalances{accounts: accounts}
}

func (b *accountBalances) SubBalance(account crypto.Address, amount *big.Int) error {
	a, err := b.accounts.Get(context.Background(), account)
	if err != nil {
		return err
	}
	var subErr error
	a.WithLock(func(acc *types.Account) {
		if acc.Balance.Cmp(amount) < 0 {
			subErr = types.ErrInsufficientBalance
			return
		}
		acc.Balance = new(big.Int).Sub(acc.Balance, amount)
	})
	return subErr
}

func (b *accountBalances) AddBalance(account crypto.Address, amount *big.Int) error {
	a, err := b.accounts.Get(context.Background(), account)
	if err != nil {
		return err
	}
	a.WithLock(func(acc *types.Account) {
		acc.Balance = new(big.Int).Add(acc.Balance, amount)
	})
	return nil
}
