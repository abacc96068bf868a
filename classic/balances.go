package classic

import (
	"context"
	"math/big"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/store"
	"github.com/blockberries/fquorum/types"
)

// accountBalances adapts *store.AccountStore to effects.BalanceStore, the
// same way certproc.accountBalances does for the recovery-capable
// processor (spec §9: "share the account store, vote store ... ;
// parameterise the processor"). Kept as its own small adapter rather
// than exported from certproc, since the two processors are meant to
// stay independently readable modules, not coupled through a shared
// internal type.
type accountBalances struct {
	accounts *store.AccountStore
}

func newAccountBalances(accounts *store.AccountStore) *accountBalances {
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
