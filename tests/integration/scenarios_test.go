package integration

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/types"
)

const (
	n = 6
	f = 1
	// notarisation = n - 3f = 3, finality = n - f = 5
)

// sign builds and signs a payment transaction from sender to recipient.
func payment(t *testing.T, sender crypto.Signer, recipient crypto.Address, amount int64, nonce uint64) *types.Transaction {
	t.Helper()
	tx := &types.Transaction{Recipient: recipient, Amount: big.NewInt(amount), Nonce: nonce}
	require.NoError(t, tx.Sign(sender))
	return tx
}

// TestHappyPath is spec §8 scenario 1.
func TestHappyPath(t *testing.T) {
	sender := newSigner(t)
	recipient := newSigner(t)

	net := newNetwork(t, n, f, map[crypto.Address]*big.Int{sender.Address(): big.NewInt(1000)})

	tx := payment(t, sender, recipient.Address(), 100, 0)
	net.submitAll(tx)

	for vi := 0; vi < n; vi++ {
		senderSnap := net.account(vi, sender.Address())
		require.Equal(t, uint64(1), senderSnap.Nonce, "validator %d", vi)
		require.Equal(t, int64(0), senderSnap.Finalised, "validator %d", vi)
		require.Equal(t, big.NewInt(900), senderSnap.Balance, "validator %d", vi)

		recipientSnap := net.account(vi, recipient.Address())
		require.Equal(t, big.NewInt(100), recipientSnap.Balance, "validator %d", vi)
	}
}

// TestThreeSequentialPayments is spec §8 scenario 2.
func TestThreeSequentialPayments(t *testing.T) {
	sender := newSigner(t)
	recipient := newSigner(t)

	net := newNetwork(t, n, f, map[crypto.Address]*big.Int{sender.Address(): big.NewInt(1000)})

	amounts := []int64{100, 200, 50}
	for nonce, amount := range amounts {
		tx := payment(t, sender, recipient.Address(), amount, uint64(nonce))
		net.submitAll(tx)
	}

	for vi := 0; vi < n; vi++ {
		snap := net.account(vi, sender.Address())
		require.Equal(t, uint64(3), snap.Nonce, "validator %d", vi)
		require.Equal(t, int64(2), snap.Finalised, "validator %d", vi)
		require.Equal(t, big.NewInt(650), snap.Balance, "validator %d", vi)
	}
}

// TestInsufficientBalance is spec §8 scenario 3.
func TestInsufficientBalance(t *testing.T) {
	sender := newSigner(t)
	recipient := newSigner(t)

	net := newNetwork(t, n, f, map[crypto.Address]*big.Int{sender.Address(): big.NewInt(100)})

	tx := payment(t, sender, recipient.Address(), 200, 0)

	accepted := 0
	for vi := 0; vi < n; vi++ {
		if _, err := net.validators[vi].OnTransaction(tx); err == nil {
			accepted++
		}
	}
	require.Equal(t, 0, accepted)

	for vi := 0; vi < n; vi++ {
		snap := net.account(vi, sender.Address())
		require.Equal(t, big.NewInt(100), snap.Balance, "validator %d", vi)
		require.Equal(t, uint64(0), snap.Nonce, "validator %d", vi)
	}
}

// TestWrongNonce is spec §8 scenario 4.
func TestWrongNonce(t *testing.T) {
	sender := newSigner(t)
	recipient := newSigner(t)

	net := newNetwork(t, n, f, map[crypto.Address]*big.Int{sender.Address(): big.NewInt(1000)})

	tx := payment(t, sender, recipient.Address(), 100, 5)

	accepted := 0
	for vi := 0; vi < n; vi++ {
		if _, err := net.validators[vi].OnTransaction(tx); err == nil {
			accepted++
		}
	}
	require.Equal(t, 0, accepted)

	for vi := 0; vi < n; vi++ {
		snap := net.account(vi, sender.Address())
		require.Equal(t, big.NewInt(1000), snap.Balance, "validator %d", vi)
		require.Equal(t, uint64(0), snap.Nonce, "validator %d", vi)
	}
}

// TestEquivocationSplitWithoutFinality is spec §8 scenario 5: a 3/3 split
// at nonce 1 reaches notarisation on both sides but finality on
// neither, so the account advances past the equivocated nonce without
// finalising it.
func TestEquivocationSplitWithoutFinality(t *testing.T) {
	sender := newSigner(t)
	recipient := newSigner(t)
	other1 := newSigner(t)
	other2 := newSigner(t)

	net := newNetwork(t, n, f, map[crypto.Address]*big.Int{sender.Address(): big.NewInt(1000)})

	tx0 := payment(t, sender, recipient.Address(), 100, 0)
	net.submitAll(tx0)
	for vi := 0; vi < n; vi++ {
		require.Equal(t, int64(0), net.account(vi, sender.Address()).Finalised, "validator %d", vi)
	}

	txA := payment(t, sender, other1.Address(), 10, 1)
	txB := payment(t, sender, other2.Address(), 20, 1)
	net.submitToSubset([]int{0, 1, 2}, txA)
	net.submitToSubset([]int{3, 4, 5}, txB)

	for vi := 0; vi < n; vi++ {
		snap := net.account(vi, sender.Address())
		require.Equal(t, uint64(2), snap.Nonce, "validator %d", vi)
		require.False(t, snap.Pending, "validator %d", vi)
		require.Equal(t, int64(0), snap.Finalised, "validator %d: nonce 1 must not finalise under a 3/3 split", vi)
	}
}

// TestSixWaySplitForcesBottomThenRecovers is spec §8 scenario 6.
func TestSixWaySplitForcesBottomThenRecovers(t *testing.T) {
	sender := newSigner(t)
	recipient := newSigner(t)

	net := newNetwork(t, n, f, map[crypto.Address]*big.Int{sender.Address(): big.NewInt(1000)})

	tx0 := payment(t, sender, recipient.Address(), 100, 0)
	net.submitAll(tx0)

	for i := 0; i < n; i++ {
		distinct := newSigner(t)
		tx := payment(t, sender, distinct.Address(), 1, 1)
		net.submitToSubset([]int{i}, tx)
	}

	for vi := 0; vi < n; vi++ {
		snap := net.account(vi, sender.Address())
		require.Equal(t, uint64(2), snap.Nonce, "validator %d: six-way split must force a bottom notarisation", vi)
		require.False(t, snap.Pending, "validator %d", vi)
		require.Equal(t, int64(0), snap.Finalised, "validator %d", vi)
	}

	info, err := net.validators[0].RecoveryInfo(sender.Address())
	require.NoError(t, err)
	require.Equal(t, int64(0), info.FinalisedNonce)

	recoveryContract := crypto.Address{0xFF, 0xFF, 0xFF, 0xFF}
	tipBytes, err := types.EncodeTransaction(tx0)
	require.NoError(t, err)
	recoveryTx := &types.Transaction{Recipient: recoveryContract, Data: tipBytes, Nonce: 2}
	require.NoError(t, recoveryTx.Sign(sender))

	net.submitAll(recoveryTx)

	for vi := 0; vi < n; vi++ {
		snap := net.account(vi, sender.Address())
		require.Equal(t, int64(2), snap.Finalised, "validator %d", vi)
		require.Equal(t, big.NewInt(900), snap.Balance, "validator %d: tip was already executed, balance unchanged", vi)
	}
}
