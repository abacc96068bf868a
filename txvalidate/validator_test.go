package txvalidate

import (
	"math/big"
	"testing"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/store"
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

func TestValidatePaymentAccepted(t *testing.T) {
	signer := newSigner(t)
	tx := &types.Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(100), Nonce: 0}
	require.NoError(t, tx.Sign(signer))

	acct := types.Snapshot{Address: signer.Address(), Balance: big.NewInt(1000), Nonce: 0, Finalised: -1}
	v := NewValidator(recoveryContract, store.NewVoteStore(), 3)

	sender, err := v.Validate(tx, acct)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), sender)
}

func TestValidateRejectsBadSignature(t *testing.T) {
	tx := &types.Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(100), Nonce: 0}
	acct := types.Snapshot{Address: crypto.Address{0x01}, Balance: big.NewInt(1000), Nonce: 0, Finalised: -1}
	v := NewValidator(recoveryContract, store.NewVoteStore(), 3)

	_, err := v.Validate(tx, acct)
	require.ErrorIs(t, err, types.ErrBadSignature)
}

func TestValidateRejectsPending(t *testing.T) {
	signer := newSigner(t)
	tx := &types.Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(100), Nonce: 0}
	require.NoError(t, tx.Sign(signer))

	acct := types.Snapshot{Address: signer.Address(), Balance: big.NewInt(1000), Nonce: 0, Finalised: -1, Pending: true}
	v := NewValidator(recoveryContract, store.NewVoteStore(), 3)

	_, err := v.Validate(tx, acct)
	require.ErrorIs(t, err, types.ErrPending)
}

func TestValidateRejectsNonceMismatch(t *testing.T) {
	signer := newSigner(t)
	tx := &types.Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(100), Nonce: 5}
	require.NoError(t, tx.Sign(signer))

	acct := types.Snapshot{Address: signer.Address(), Balance: big.NewInt(1000), Nonce: 0, Finalised: -1}
	v := NewValidator(recoveryContract, store.NewVoteStore(), 3)

	_, err := v.Validate(tx, acct)
	require.ErrorIs(t, err, types.ErrNonceMismatch)
}

func TestValidateRejectsNotFinalisedPrev(t *testing.T) {
	signer := newSigner(t)
	tx := &types.Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(100), Nonce: 1}
	require.NoError(t, tx.Sign(signer))

	acct := types.Snapshot{Address: signer.Address(), Balance: big.NewInt(1000), Nonce: 1, Finalised: -1}
	v := NewValidator(recoveryContract, store.NewVoteStore(), 3)

	_, err := v.Validate(tx, acct)
	require.ErrorIs(t, err, types.ErrNotFinalisedPrev)
}

func TestValidateRejectsInsufficientBalance(t *testing.T) {
	signer := newSigner(t)
	tx := &types.Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(100), Nonce: 0}
	require.NoError(t, tx.Sign(signer))

	acct := types.Snapshot{Address: signer.Address(), Balance: big.NewInt(50), Nonce: 0, Finalised: -1}
	v := NewValidator(recoveryContract, store.NewVoteStore(), 3)

	_, err := v.Validate(tx, acct)
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
}

func TestValidateRecoveryAccepted(t *testing.T) {
	signer := newSigner(t)
	tip := &types.Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(10), Nonce: 0}
	require.NoError(t, tip.Sign(signer))

	vs := store.NewVoteStore()
	tipPayload := types.TxPayload(tip.Hash())
	for i := 0; i < 3; i++ {
		vs.Add(types.Vote{Validator: crypto.Address{byte(i + 1)}, Account: signer.Address(), Nonce: 0, Payload: tipPayload})
	}
	for i := 0; i < 3; i++ {
		vs.Add(types.Vote{Validator: crypto.Address{byte(i + 1)}, Account: signer.Address(), Nonce: 1, Payload: types.BottomPayload})
	}

	data, err := types.EncodeTransaction(tip)
	require.NoError(t, err)
	rec := &types.Transaction{Recipient: recoveryContract, Amount: big.NewInt(0), Nonce: 2, Data: data}
	require.NoError(t, rec.Sign(signer))

	acct := types.Snapshot{Address: signer.Address(), Balance: big.NewInt(1000), Nonce: 2, Finalised: -1}
	v := NewValidator(recoveryContract, vs, 3)

	sender, err := v.Validate(rec, acct)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), sender)
}

func TestValidateRecoveryRejectsMissingTip(t *testing.T) {
	signer := newSigner(t)
	rec := &types.Transaction{Recipient: recoveryContract, Amount: big.NewInt(0), Nonce: 0}
	require.NoError(t, rec.Sign(signer))

	acct := types.Snapshot{Address: signer.Address(), Balance: big.NewInt(1000), Nonce: 0, Finalised: -1}
	v := NewValidator(recoveryContract, store.NewVoteStore(), 3)

	_, err := v.Validate(rec, acct)
	require.ErrorIs(t, err, types.ErrInvalidRecovery)
	require.ErrorIs(t, err, types.ErrMissingTip)
}

func TestValidateRecoveryRejectsTipNotNotarised(t *testing.T) {
	signer := newSigner(t)
	tip := &types.Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(10), Nonce: 0}
	require.NoError(t, tip.Sign(signer))

	data, err := types.EncodeTransaction(tip)
	require.NoError(t, err)
	rec := &types.Transaction{Recipient: recoveryContract, Amount: big.NewInt(0), Nonce: 1, Data: data}
	require.NoError(t, rec.Sign(signer))

	acct := types.Snapshot{Address: signer.Address(), Balance: big.NewInt(1000), Nonce: 1, Finalised: -1}
	v := NewValidator(recoveryContract, store.NewVoteStore(), 3)

	_, err = v.Validate(rec, acct)
	require.ErrorIs(t, err, types.ErrInvalidRecovery)
	require.ErrorIs(t, err, types.ErrTipNotNotarised)
}

func TestValidateRecoveryRejectsIntermediateNotBottom(t *testing.T) {
	signer := newSigner(t)
	tip := &types.Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(10), Nonce: 0}
	require.NoError(t, tip.Sign(signer))

	vs := store.NewVoteStore()
	tipPayload := types.TxPayload(tip.Hash())
	for i := 0; i < 3; i++ {
		vs.Add(types.Vote{Validator: crypto.Address{byte(i + 1)}, Account: signer.Address(), Nonce: 0, Payload: tipPayload})
	}
	// nonce 1 never reached bottom notarisation.

	data, err := types.EncodeTransaction(tip)
	require.NoError(t, err)
	rec := &types.Transaction{Recipient: recoveryContract, Amount: big.NewInt(0), Nonce: 2, Data: data}
	require.NoError(t, rec.Sign(signer))

	acct := types.Snapshot{Address: signer.Address(), Balance: big.NewInt(1000), Nonce: 2, Finalised: -1}
	v := NewValidator(recoveryContract, vs, 3)

	_, err = v.Validate(rec, acct)
	require.ErrorIs(t, err, types.ErrInvalidRecovery)
	require.ErrorIs(t, err, types.ErrIntermediateNotBottom)
}
