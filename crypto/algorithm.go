// Package crypto provides the signing, verification, and hashing primitives
// the validator state machine and recovery protocol are built on: keyed
// signing over a domain-separated message, signature verification, and
// content-addressed hashing for transactions and votes.
package crypto

// Algorithm identifies a supported signing algorithm.
type Algorithm string

const (
	// AlgorithmSecp256k1 is the only algorithm with a signer implementation
	// in this module. Key size: 33 bytes (compressed), signature size: 64
	// bytes (r||s).
	AlgorithmSecp256k1 Algorithm = "secp256k1"

	// AlgorithmEd25519 and AlgorithmSecp256r1 are recognized for forward
	// compatibility with other validator deployments but have no signer
	// implementation here; GenerateKey, ParsePrivateKey and ParsePublicKey
	// reject them with ErrUnsupportedAlgorithm.
	AlgorithmEd25519   Algorithm = "ed25519"
	AlgorithmSecp256r1 Algorithm = "secp256r1"
)

// IsValid reports whether a is a recognized algorithm name.
func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmSecp256k1, AlgorithmEd25519, AlgorithmSecp256r1:
		return true
	default:
		return false
	}
}

func (a Algorithm) String() string {
	return string(a)
}
