package crypto

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// secp256k1PublicKey implements PublicKey.
type secp256k1PublicKey struct {
	key *secp256k1.PublicKey
}

func (k *secp256k1PublicKey) Algorithm() Algorithm { return AlgorithmSecp256k1 }

// Bytes returns the 33-byte compressed encoding.
func (k *secp256k1PublicKey) Bytes() []byte {
	return k.key.SerializeCompressed()
}

// Verify checks a 64-byte r||s signature over sha256(message).
//
// ECDSA signatures have inherent malleability: for a valid (r, s), (r,
// n-s) also verifies. This module does not canonicalize signatures before
// storing votes; the vote store's per-validator dedup keys on the
// validator identity and payload, not the signature bytes, so malleability
// cannot be used to smuggle a second counted vote.
func (k *secp256k1PublicKey) Verify(message, sig []byte) bool {
	if len(sig) != 64 {
		return false
	}

	var r, s secp256k1.ModNScalar
	if r.SetByteSlice(sig[:32]) {
		return false
	}
	if s.SetByteSlice(sig[32:]) {
		return false
	}

	digest := sha256.Sum256(message)
	return dcrecdsa.NewSignature(&r, &s).Verify(digest[:], k.key)
}

func (k *secp256k1PublicKey) Equals(other PublicKey) bool {
	if other == nil || other.Algorithm() != AlgorithmSecp256k1 {
		return false
	}
	return subtle.ConstantTimeCompare(k.Bytes(), other.Bytes()) == 1
}

func (k *secp256k1PublicKey) String() string {
	return hexEncode(k.Bytes())
}

// secp256k1PrivateKey implements PrivateKey.
type secp256k1PrivateKey struct {
	key *secp256k1.PrivateKey
}

func (k *secp256k1PrivateKey) Algorithm() Algorithm { return AlgorithmSecp256k1 }

func (k *secp256k1PrivateKey) Bytes() []byte {
	return k.key.Serialize()
}

func (k *secp256k1PrivateKey) Public() PublicKey {
	return &secp256k1PublicKey{key: k.key.PubKey()}
}

// Sign produces a 64-byte r||s signature over sha256(message) using RFC
// 6979 deterministic nonces (no randomness, no nonce-reuse risk across
// repeated signing of the same vote).
func (k *secp256k1PrivateKey) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	sig := dcrecdsa.Sign(k.key, digest[:])

	r := sig.R().Bytes()
	s := sig.S().Bytes()

	out := make([]byte, 64)
	copy(out[32-len(r):32], r[:])
	copy(out[64-len(s):64], s[:])
	return out, nil
}

// SignRecoverable produces a 65-byte compact signature (recovery byte
// followed by r||s) from which the signer's public key can be recovered
// without the verifier already knowing it. The transaction and vote wire
// formats both carry this signature so that "sender recovered from
// signature" (spec-mandated) doesn't require shipping the public key
// alongside every message.
func (k *secp256k1PrivateKey) SignRecoverable(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	return dcrecdsa.SignCompact(k.key, digest[:], true), nil
}

// RecoverAddress recovers the signer's Address from a 65-byte recoverable
// signature over message. Returns ErrInvalidSignature if the signature does
// not parse or does not recover to a valid curve point.
func RecoverAddress(message, sig []byte) (Address, error) {
	pub, err := RecoverPublicKey(message, sig)
	if err != nil {
		var zero Address
		return zero, err
	}
	return AddressFromPublicKey(pub), nil
}

// RecoverPublicKey recovers the full public key from a 65-byte recoverable
// signature over message.
func RecoverPublicKey(message, sig []byte) (PublicKey, error) {
	if len(sig) != 65 {
		return nil, ErrInvalidSignature
	}
	digest := sha256.Sum256(message)
	pub, _, err := dcrecdsa.RecoverCompact(sig, digest[:])
	if err != nil {
		return nil, ErrInvalidSignature
	}
	return &secp256k1PublicKey{key: pub}, nil
}

// GenerateKey creates a new random key pair for the given algorithm.
func GenerateKey(alg Algorithm) (PrivateKey, error) {
	if alg != AlgorithmSecp256k1 {
		return nil, ErrUnsupportedAlgorithm
	}
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &secp256k1PrivateKey{key: key}, nil
}

// ParsePrivateKey decodes a raw 32-byte scalar into a PrivateKey.
func ParsePrivateKey(alg Algorithm, raw []byte) (PrivateKey, error) {
	if alg != AlgorithmSecp256k1 {
		return nil, ErrUnsupportedAlgorithm
	}
	if len(raw) != 32 {
		return nil, ErrInvalidPrivateKey
	}
	key := secp256k1.PrivKeyFromBytes(raw)
	return &secp256k1PrivateKey{key: key}, nil
}

// ParsePublicKey decodes a compressed or uncompressed public key.
func ParsePublicKey(alg Algorithm, raw []byte) (PublicKey, error) {
	if alg != AlgorithmSecp256k1 {
		return nil, ErrUnsupportedAlgorithm
	}
	key, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return &secp256k1PublicKey{key: key}, nil
}
