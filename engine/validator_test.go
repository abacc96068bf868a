package engine

import (
	"math/big"
	"testing"

	"github.com/blockberries/fquorum/certproc"
	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/types"
	"github.com/stretchr/testify/require"
)

var recoveryContract = crypto.Address{0xFF}

func newSigner(t *testing.T) crypto.Signer {
	t.Helper()
	priv, err := crypto.GenerateKey(crypto.AlgorithmSecp256k1)
	require.NoError(t, err)
	return crypto.NewSigner(priv)
}

func newTestValidator(t *testing.T, balances map[crypto.Address]*big.Int) *Validator {
	t.Helper()
	self := newSigner(t)
	v, err := NewValidator(Config{
		N:                6,
		F:                1,
		RecoveryContract: recoveryContract,
		Validators:       []crypto.Address{self.Address(), {0x02}, {0x03}, {0x04}, {0x05}, {0x06}},
		Signer:           self,
		Broadcaster:      certproc.NopBroadcaster{},
		GenesisBalances:  balances,
	})
	require.NoError(t, err)
	return v
}

func TestOnTransactionSelfVoteFastPath(t *testing.T) {
	sender := newSigner(t)
	v := newTestValidator(t, map[crypto.Address]*big.Int{sender.Address(): big.NewInt(1000)})

	tx := &types.Transaction{Recipient: crypto.Address{0x09}, Amount: big.NewInt(100), Nonce: 0}
	require.NoError(t, tx.Sign(sender))

	vote, err := v.OnTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, sender.Address(), vote.Account)
	require.Equal(t, uint64(0), vote.Nonce)

	snap, err := v.Account(sender.Address())
	require.NoError(t, err)
	require.True(t, snap.Pending)
}

func TestOnTransactionRejectsNonceMismatch(t *testing.T) {
	sender := newSigner(t)
	v := newTestValidator(t, map[crypto.Address]*big.Int{sender.Address(): big.NewInt(1000)})

	tx := &types.Transaction{Recipient: crypto.Address{0x09}, Amount: big.NewInt(100), Nonce: 7}
	require.NoError(t, tx.Sign(sender))

	_, err := v.OnTransaction(tx)
	require.ErrorIs(t, err, types.ErrNonceMismatch)
}

func TestOnVoteRejectsUnknownValidator(t *testing.T) {
	sender := newSigner(t)
	v := newTestValidator(t, nil)
	impostor := newSigner(t)

	vote := types.Vote{Account: sender.Address(), Nonce: 0, Payload: types.TxPayload(crypto.Hash{0x01})}
	require.NoError(t, vote.Sign(impostor))

	err := v.OnVote(vote)
	require.ErrorIs(t, err, types.ErrNotInValidatorSet)
}

func TestOnVoteRejectsBadSignature(t *testing.T) {
	sender := newSigner(t)
	v := newTestValidator(t, nil)

	vote := types.Vote{Validator: sender.Address(), Account: sender.Address(), Nonce: 0, Payload: types.TxPayload(crypto.Hash{0x01}), Signature: []byte("not-a-signature")}

	err := v.OnVote(vote)
	require.ErrorIs(t, err, types.ErrBadSignature)
}

func TestRecoveryInfoNothingFinalised(t *testing.T) {
	sender := newSigner(t)
	v := newTestValidator(t, map[crypto.Address]*big.Int{sender.Address(): big.NewInt(1000)})

	info, err := v.RecoveryInfo(sender.Address())
	require.NoError(t, err)
	require.Equal(t, int64(-1), info.FinalisedNonce)
	require.Equal(t, uint64(0), info.CurrentNonce)
}
