package types

import (
	"encoding/binary"

	"github.com/blockberries/fquorum/crypto"
)

// VotePayload is either a transaction hash or the sentinel ⊥ (spec §9:
// "VotePayload = Tx(hash) | Bottom"). The zero value of VotePayload is
// Bottom, matching crypto.ZeroHash as the sentinel.
type VotePayload struct {
	Hash crypto.Hash
}

// TxPayload wraps a transaction hash as a vote payload.
func TxPayload(h crypto.Hash) VotePayload {
	return VotePayload{Hash: h}
}

// BottomPayload is the ⊥ sentinel: "this nonce carries no transaction".
var BottomPayload = VotePayload{Hash: crypto.ZeroHash}

func (p VotePayload) IsBottom() bool {
	return p.Hash.IsZero()
}

func (p VotePayload) String() string {
	if p.IsBottom() {
		return "⊥"
	}
	return p.Hash.String()
}

const domainVote = "fquorum/vote/v1"

// Vote is a validator's signed statement about what, if anything,
// occupies (account, nonce) (spec §3).
type Vote struct {
	Validator crypto.Address `json:"validator"`
	Account   crypto.Address `json:"account"`
	Nonce     uint64         `json:"nonce"`
	Payload   VotePayload    `json:"payload"`
	Signature []byte         `json:"signature"`
}

// SigningDigest computes the domain-separated digest over
// (account, nonce, payload-or-zero-hash) that a validator signs and a
// verifier recovers against (spec §3, §4.8).
func (v *Vote) SigningDigest() crypto.Hash {
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], v.Nonce)
	return crypto.DomainHash(domainVote, v.Account.Bytes(), nonceBuf[:], v.Payload.Hash.Bytes())
}

// Sign fills in Validator and Signature by signing the vote's digest
// with signer.
func (v *Vote) Sign(signer crypto.Signer) error {
	digest := v.SigningDigest()
	sig, err := signer.Sign(digest.Bytes())
	if err != nil {
		return err
	}
	v.Validator = signer.Address()
	v.Signature = sig
	return nil
}

// VerifySignature checks that Signature recovers to Validator over the
// vote's digest. It does not check validator-set membership; that is
// the caller's responsibility (spec §4.8b).
func (v *Vote) VerifySignature() error {
	digest := v.SigningDigest()
	addr, err := crypto.RecoverAddress(digest.Bytes(), v.Signature)
	if err != nil {
		return ErrBadSignature
	}
	if addr != v.Validator {
		return ErrBadSignature
	}
	return nil
}
