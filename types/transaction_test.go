package types

import (
	"math/big"
	"testing"

	"github.com/blockberries/fquorum/crypto"
	"github.com/stretchr/testify/require"
)

func TestTransactionSignAndRecoverSender(t *testing.T) {
	priv, err := crypto.GenerateKey(crypto.AlgorithmSecp256k1)
	require.NoError(t, err)
	signer := crypto.NewSigner(priv)

	tx := &Transaction{
		Recipient: crypto.Address{0x01},
		Amount:    big.NewInt(100),
		Nonce:     3,
	}
	require.NoError(t, tx.Sign(signer))

	sender, err := tx.Sender()
	require.NoError(t, err)
	require.Equal(t, signer.Address(), sender)
}

func TestTransactionTamperedAmountChangesSender(t *testing.T) {
	priv, err := crypto.GenerateKey(crypto.AlgorithmSecp256k1)
	require.NoError(t, err)
	signer := crypto.NewSigner(priv)

	tx := &Transaction{Recipient: crypto.Address{0x02}, Amount: big.NewInt(100), Nonce: 0}
	require.NoError(t, tx.Sign(signer))

	tx.Amount = big.NewInt(900)
	sender, err := tx.Sender()
	require.NoError(t, err)
	require.NotEqual(t, signer.Address(), sender)
}

func TestTransactionKindClassification(t *testing.T) {
	recoveryContract := crypto.Address{0xff}
	payment := &Transaction{Recipient: crypto.Address{0x01}}
	recovery := &Transaction{Recipient: recoveryContract}

	require.Equal(t, TxKindPayment, payment.Kind(recoveryContract))
	require.Equal(t, TxKindRecovery, recovery.Kind(recoveryContract))
}

func TestTransactionTipEncodeDecode(t *testing.T) {
	tip := &Transaction{Recipient: crypto.Address{0x03}, Amount: big.NewInt(50), Nonce: 0}
	data, err := EncodeTransaction(tip)
	require.NoError(t, err)

	recovery := &Transaction{Recipient: crypto.Address{0xff}, Data: data, Nonce: 2}
	decoded, err := recovery.Tip()
	require.NoError(t, err)
	require.Equal(t, tip.Nonce, decoded.Nonce)
	require.Equal(t, tip.Amount, decoded.Amount)
}

func TestTransactionTipMissingDataFails(t *testing.T) {
	recovery := &Transaction{Recipient: crypto.Address{0xff}, Nonce: 2}
	_, err := recovery.Tip()
	require.ErrorIs(t, err, ErrMissingTip)
}

func TestTransactionHashIsDeterministic(t *testing.T) {
	tx := &Transaction{Recipient: crypto.Address{0x01}, Amount: big.NewInt(100), Nonce: 1, Signature: []byte{0xaa}}
	h1 := tx.Hash()
	h2 := tx.Hash()
	require.Equal(t, h1, h2)
}
