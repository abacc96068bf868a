package types

import (
	"encoding/binary"
	"encoding/json"
	"math/big"

	"github.com/blockberries/fquorum/crypto"
)

// TxKind tags a Transaction as a payment or a recovery (spec §9:
// "TxKind = Payment | Recovery { tip: Box<Tx> }"). Recovery is
// distinguished purely by recipient address, not by a wire-level tag, so
// Kind needs the configured recovery-contract address to classify.
type TxKind int

const (
	TxKindPayment TxKind = iota
	TxKindRecovery
)

func (k TxKind) String() string {
	switch k {
	case TxKindPayment:
		return "payment"
	case TxKindRecovery:
		return "recovery"
	default:
		return "unknown"
	}
}

const domainTransaction = "fquorum/tx/v1"

// Transaction is the signed envelope a client submits (spec §3, §6): an
// opaque, deterministically-serialised envelope carrying a
// sender-recoverable signature, recipient, amount, nonce and data. The
// sender address is never carried on the wire; it is recovered from the
// signature on demand.
type Transaction struct {
	Recipient crypto.Address `json:"recipient"`
	Amount    *big.Int       `json:"amount"`
	Nonce     uint64         `json:"nonce"`
	Data      []byte         `json:"data,omitempty"`

	// Signature is a 65-byte recoverable signature over SigningBytes().
	Signature []byte `json:"signature"`
}

// SigningBytes is the deterministic encoding a sender signs and a
// verifier recovers against. It excludes Signature itself.
func (tx *Transaction) SigningBytes() []byte {
	amount := tx.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	amountBytes := amount.Bytes()

	buf := make([]byte, 0, len(tx.Recipient)+8+8+8+len(amountBytes)+len(tx.Data))
	buf = append(buf, tx.Recipient.Bytes()...)

	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(amountBytes)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, amountBytes...)

	binary.BigEndian.PutUint64(lenBuf[:], tx.Nonce)
	buf = append(buf, lenBuf[:]...)

	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(tx.Data)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, tx.Data...)

	return buf
}

// Hash content-addresses the transaction, domain-separated from the vote
// signing payload so a transaction digest can never collide with a vote
// digest under DomainHash.
func (tx *Transaction) Hash() crypto.Hash {
	return crypto.DomainHash(domainTransaction, tx.SigningBytes(), tx.Signature)
}

// Sender recovers the signer address from Signature. Returns
// ErrBadSignature if the signature does not parse or does not recover.
func (tx *Transaction) Sender() (crypto.Address, error) {
	if len(tx.Signature) == 0 {
		return crypto.Address{}, ErrBadSignature
	}
	addr, err := crypto.RecoverAddress(tx.SigningBytes(), tx.Signature)
	if err != nil {
		return crypto.Address{}, ErrBadSignature
	}
	return addr, nil
}

// Sign fills in Signature by signing SigningBytes with signer.
func (tx *Transaction) Sign(signer crypto.Signer) error {
	sig, err := signer.Sign(tx.SigningBytes())
	if err != nil {
		return err
	}
	tx.Signature = sig
	return nil
}

// Kind classifies the transaction against the configured recovery
// contract sentinel address (spec §6).
func (tx *Transaction) Kind(recoveryContract crypto.Address) TxKind {
	if tx.Recipient == recoveryContract {
		return TxKindRecovery
	}
	return TxKindPayment
}

// Tip decodes Data as the nested tip transaction carried by a recovery
// transaction. Returns ErrMissingTip if Data does not decode.
func (tx *Transaction) Tip() (*Transaction, error) {
	if len(tx.Data) == 0 {
		return nil, ErrMissingTip
	}
	inner, err := DecodeTransaction(tx.Data)
	if err != nil {
		return nil, ErrMissingTip
	}
	return inner, nil
}

// EncodeTransaction marshals tx for transport, or for embedding as a
// recovery transaction's tip payload.
func EncodeTransaction(tx *Transaction) ([]byte, error) {
	return json.Marshal(tx)
}

// DecodeTransaction is the inverse of EncodeTransaction.
func DecodeTransaction(data []byte) (*Transaction, error) {
	var tx Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, err
	}
	if tx.Amount == nil {
		tx.Amount = big.NewInt(0)
	}
	return &tx, nil
}
