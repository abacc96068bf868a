package certproc

import (
	"math/big"
	"testing"

	"context"

	"github.com/blockberries/fquorum/capability"
	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/recovery"
	"github.com/blockberries/fquorum/store"
	"github.com/blockberries/fquorum/types"
	"github.com/stretchr/testify/require"
)

var recoveryContract = crypto.Address{0xFF}

const (
	n = 6
	f = 1
	// notarisationQuorum = n - 3f = 3, finalityQuorum = n - f = 5
)

func testParams() Params {
	return Params{NotarisationQuorum: n - 3*f, FinalityQuorum: n - f}
}

func validatorAddrs(count int) []crypto.Address {
	addrs := make([]crypto.Address, count)
	for i := range addrs {
		addrs[i] = crypto.Address{byte(i + 1)}
	}
	return addrs
}

func newTestProcessor(t *testing.T, selfValidator crypto.Address) (*Processor, *store.AccountStore, *store.VoteStore, *store.TransactionStore) {
	t.Helper()
	accounts := store.NewAccountStore()
	votes := store.NewVoteStore()
	txs := store.NewTransactionStore()
	vset := store.NewValidatorSetStore(nil)
	resolver := recovery.NewResolver(recoveryContract)

	capManager := capability.NewCapabilityManager(accounts, vset)
	accountsCap, err := capManager.GrantAccountCapability("certproc-test")
	require.NoError(t, err)

	signer := &fixedSigner{addr: selfValidator}
	proc, err := NewProcessor(accountsCap, votes, txs, resolver, NopBroadcaster{}, signer, testParams())
	require.NoError(t, err)
	return proc, accounts, votes, txs
}

// fixedSigner signs with a throwaway key but reports a caller-chosen
// address, so tests can simulate "being" any one of several validators
// without juggling N real keypairs.
type fixedSigner struct {
	addr crypto.Address
	real crypto.Signer
}

func (s *fixedSigner) Algorithm() crypto.Algorithm { return s.signer().Algorithm() }
func (s *fixedSigner) Address() crypto.Address     { return s.addr }
func (s *fixedSigner) PublicKey() crypto.PublicKey { return s.signer().PublicKey() }
func (s *fixedSigner) Sign(message []byte) ([]byte, error) {
	return s.signer().Sign(message)
}
func (s *fixedSigner) signer() crypto.Signer {
	if s.real == nil {
		priv, err := crypto.GenerateKey(crypto.AlgorithmSecp256k1)
		if err != nil {
			panic(err)
		}
		s.real = crypto.NewSigner(priv)
	}
	return s.real
}

func castVotes(t *testing.T, votes *store.VoteStore, account crypto.Address, nonce uint64, payload types.VotePayload, validators []crypto.Address) {
	t.Helper()
	for _, v := range validators {
		vote := types.Vote{Validator: v, Account: account, Nonce: nonce, Payload: payload}
		votes.Add(vote)
	}
}

func TestHappyPathPaymentFinalises(t *testing.T) {
	account := crypto.Address{0xA0}
	recipient := crypto.Address{0xB0}
	self := validatorAddrs(n)[0]

	proc, accounts, votes, txs := newTestProcessor(t, self)
	accounts.SeedGenesis(map[crypto.Address]*big.Int{account: big.NewInt(1000)})

	tx := &types.Transaction{Recipient: recipient, Amount: big.NewInt(100), Nonce: 0}
	tx.Signature = []byte{0x01} // content irrelevant to ChainStart/hash path in this unit test
	txs.Put(tx)

	payload := types.TxPayload(tx.Hash())
	castVotes(t, votes, account, 0, payload, validatorAddrs(n)) // all 6 validators agree

	require.NoError(t, proc.Process(account, 0))

	a, err := accounts.Get(context.Background(), account)
	require.NoError(t, err)
	snap := a.View()
	require.Equal(t, uint64(1), snap.Nonce)
	require.Equal(t, int64(0), snap.Finalised)
	require.Equal(t, big.NewInt(900), snap.Balance)
	require.False(t, snap.Pending)

	r, err := accounts.Get(context.Background(), recipient)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), r.View().Balance)
}

func TestEquivocationSplitAdvancesWithoutFinalising(t *testing.T) {
	account := crypto.Address{0xA0}
	self := validatorAddrs(n)[0]

	proc, accounts, votes, txs := newTestProcessor(t, self)
	accounts.SeedGenesis(map[crypto.Address]*big.Int{account: big.NewInt(1000)})

	// This validator has already cast its own vote at nonce 0, which is
	// what marks the account pending and makes R2 applicable.
	acctObj, err := accounts.Get(context.Background(), account)
	require.NoError(t, err)
	acctObj.WithLock(func(a *types.Account) { a.Pending = true })

	txA := &types.Transaction{Recipient: crypto.Address{0xB1}, Amount: big.NewInt(10), Nonce: 0}
	txA.Signature = []byte{0x01}
	txB := &types.Transaction{Recipient: crypto.Address{0xB2}, Amount: big.NewInt(20), Nonce: 0}
	txB.Signature = []byte{0x02}
	txs.Put(txA)
	txs.Put(txB)

	payloadA := types.TxPayload(txA.Hash())
	payloadB := types.TxPayload(txB.Hash())
	all := validatorAddrs(n)
	castVotes(t, votes, account, 0, payloadA, all[:3])
	castVotes(t, votes, account, 0, payloadB, all[3:])

	require.NoError(t, proc.Process(account, 0))

	a, err := accounts.Get(context.Background(), account)
	require.NoError(t, err)
	snap := a.View()
	require.Equal(t, uint64(1), snap.Nonce)
	require.False(t, snap.Pending)
	require.Equal(t, int64(-1), snap.Finalised)
}

func TestSixWaySplitForcesBottomThenAdvances(t *testing.T) {
	account := crypto.Address{0xA0}
	self := validatorAddrs(n)[0]

	proc, accounts, votes, _ := newTestProcessor(t, self)
	accounts.SeedGenesis(map[crypto.Address]*big.Int{account: big.NewInt(1000)})

	all := validatorAddrs(n)
	for i, v := range all {
		payload := types.TxPayload(crypto.Hash{byte(i + 1)})
		votes.Add(types.Vote{Validator: v, Account: account, Nonce: 0, Payload: payload})
	}

	require.NoError(t, proc.Process(account, 0))

	// Our own validator should have cast ⊥ at nonce 0 in response to R1.
	require.True(t, votes.HasBottomVote(account, 0, self))

	// Once enough other validators also cast ⊥, notarisation follows.
	others := []crypto.Address{all[1], all[2]}
	castVotes(t, votes, account, 0, types.BottomPayload, others)
	require.NoError(t, proc.Process(account, 0))

	a, err := accounts.Get(context.Background(), account)
	require.NoError(t, err)
	snap := a.View()
	require.Equal(t, uint64(1), snap.Nonce)
	require.False(t, snap.Pending)
}
