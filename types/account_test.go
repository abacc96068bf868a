package types

import (
	"math/big"
	"testing"

	"github.com/blockberries/fquorum/crypto"
	"github.com/stretchr/testify/require"
)

func TestNewAccountDefaults(t *testing.T) {
	a := NewAccount(crypto.Address{0x01})
	snap := a.View()
	require.Equal(t, int64(0), snap.Balance.Sign())
	require.Equal(t, uint64(0), snap.Nonce)
	require.False(t, snap.Pending)
	require.Equal(t, int64(-1), snap.Finalised)
}

func TestAccountCheckInvariantsRejectsFinalisedGENonce(t *testing.T) {
	a := NewAccount(crypto.Address{0x01})
	a.WithLock(func(a *Account) {
		a.Nonce = 1
		a.Finalised = 1
	})
	require.Error(t, a.CheckInvariants())
}

func TestAccountViewIsDefensiveCopy(t *testing.T) {
	a := NewAccount(crypto.Address{0x01})
	a.WithLock(func(a *Account) { a.Balance = big.NewInt(500) })

	snap := a.View()
	snap.Balance.Add(snap.Balance, big.NewInt(1000))

	again := a.View()
	require.Equal(t, big.NewInt(500), again.Balance)
}
