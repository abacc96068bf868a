package classic

import (
	"context"
	"math/big"
	"testing"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/store"
	"github.com/blockberries/fquorum/types"
	"github.com/stretchr/testify/require"
)

const (
	n = 4
	f = 1
	// finalityQuorum = n - f = 3
)

func testParams() Params {
	return Params{FinalityQuorum: n - f}
}

func validatorAddrs(count int) []crypto.Address {
	addrs := make([]crypto.Address, count)
	for i := range addrs {
		addrs[i] = crypto.Address{byte(i + 1)}
	}
	return addrs
}

func castVotes(votes *store.VoteStore, account crypto.Address, nonce uint64, payload types.VotePayload, validators []crypto.Address) {
	for _, v := range validators {
		votes.Add(types.Vote{Validator: v, Account: account, Nonce: nonce, Payload: payload})
	}
}

func newTestProcessor(t *testing.T) (*Processor, *store.AccountStore, *store.VoteStore, *store.TransactionStore) {
	t.Helper()
	accounts := store.NewAccountStore()
	votes := store.NewVoteStore()
	txs := store.NewTransactionStore()
	proc, err := NewProcessor(accounts, votes, txs, testParams())
	require.NoError(t, err)
	return proc, accounts, votes, txs
}

func TestQuorumReachedFinalisesImmediately(t *testing.T) {
	account := crypto.Address{0xA0}
	recipient := crypto.Address{0xB0}

	proc, accounts, votes, txs := newTestProcessor(t)
	accounts.SeedGenesis(map[crypto.Address]*big.Int{account: big.NewInt(1000)})

	tx := &types.Transaction{Recipient: recipient, Amount: big.NewInt(50), Nonce: 0}
	tx.Signature = []byte{0x01}
	txs.Put(tx)

	payload := types.TxPayload(tx.Hash())
	castVotes(votes, account, 0, payload, validatorAddrs(n)[:3]) // exactly finality_quorum

	require.NoError(t, proc.Process(account, 0))

	a, err := accounts.Get(context.Background(), account)
	require.NoError(t, err)
	snap := a.View()
	require.Equal(t, uint64(1), snap.Nonce)
	require.Equal(t, int64(0), snap.Finalised)
	require.False(t, snap.Pending)
	require.Equal(t, big.NewInt(950), snap.Balance)
}

func TestSplitBelowQuorumStaysPendingPermanently(t *testing.T) {
	account := crypto.Address{0xA0}

	proc, accounts, votes, txs := newTestProcessor(t)
	accounts.SeedGenesis(map[crypto.Address]*big.Int{account: big.NewInt(1000)})

	acctObj, err := accounts.Get(context.Background(), account)
	require.NoError(t, err)
	acctObj.WithLock(func(a *types.Account) { a.Pending = true })

	txA := &types.Transaction{Recipient: crypto.Address{0xB1}, Amount: big.NewInt(10), Nonce: 0}
	txA.Signature = []byte{0x01}
	txB := &types.Transaction{Recipient: crypto.Address{0xB2}, Amount: big.NewInt(20), Nonce: 0}
	txB.Signature = []byte{0x02}
	txs.Put(txA)
	txs.Put(txB)

	all := validatorAddrs(n)
	castVotes(votes, account, 0, types.TxPayload(txA.Hash()), all[:2])
	castVotes(votes, account, 0, types.TxPayload(txB.Hash()), all[2:])

	require.NoError(t, proc.Process(account, 0))

	a, err := accounts.Get(context.Background(), account)
	require.NoError(t, err)
	snap := a.View()
	require.Equal(t, uint64(0), snap.Nonce)
	require.Equal(t, int64(-1), snap.Finalised)
	require.True(t, snap.Pending, "classic variant locks the account permanently on a sub-quorum split")

	// Re-running Process changes nothing: there is no ⊥ path out of the lock.
	require.NoError(t, proc.Process(account, 0))
	snap = a.View()
	require.True(t, snap.Pending)
}

func TestBelowFinalisedNonceIsIgnored(t *testing.T) {
	account := crypto.Address{0xA0}
	recipient := crypto.Address{0xB0}

	proc, accounts, votes, txs := newTestProcessor(t)
	accounts.SeedGenesis(map[crypto.Address]*big.Int{account: big.NewInt(1000)})
	acctObj, err := accounts.Get(context.Background(), account)
	require.NoError(t, err)
	acctObj.WithLock(func(a *types.Account) { a.Finalised = 5; a.Nonce = 6 })

	tx := &types.Transaction{Recipient: recipient, Amount: big.NewInt(50), Nonce: 0}
	tx.Signature = []byte{0x01}
	txs.Put(tx)
	castVotes(votes, account, 0, types.TxPayload(tx.Hash()), validatorAddrs(n)[:3])

	require.NoError(t, proc.Process(account, 0))

	a, err := accounts.Get(context.Background(), account)
	require.NoError(t, err)
	snap := a.View()
	require.Equal(t, int64(5), snap.Finalised, "a nonce at or below the finalised marker must never re-execute")
}
