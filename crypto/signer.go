package crypto

// RecoverableSigner is implemented by private keys whose signatures let a
// verifier recover the signer's public key without already knowing it.
// secp256k1 keys implement this; it underlies both vote and transaction
// signing, since §4.8 and §3 both specify "signature recovers to the
// claimed ... address" rather than requiring the public key on the wire.
type RecoverableSigner interface {
	SignRecoverable(message []byte) ([]byte, error)
}

// Signer is the validator's (or a client's) local signing identity: a
// private key plus the derived address, bundled so callers never handle
// raw key material directly.
type Signer interface {
	Algorithm() Algorithm
	Address() Address
	PublicKey() PublicKey

	// Sign produces a recoverable signature over message. Returns
	// ErrUnsupportedAlgorithm if the underlying key cannot produce
	// recoverable signatures.
	Sign(message []byte) ([]byte, error)
}

type localSigner struct {
	priv PrivateKey
	addr Address
}

// NewSigner wraps priv as a Signer.
func NewSigner(priv PrivateKey) Signer {
	return &localSigner{priv: priv, addr: AddressFromPublicKey(priv.Public())}
}

func (s *localSigner) Algorithm() Algorithm { return s.priv.Algorithm() }
func (s *localSigner) Address() Address     { return s.addr }
func (s *localSigner) PublicKey() PublicKey { return s.priv.Public() }

func (s *localSigner) Sign(message []byte) ([]byte, error) {
	rs, ok := s.priv.(RecoverableSigner)
	if !ok {
		return nil, ErrUnsupportedAlgorithm
	}
	return rs.SignRecoverable(message)
}
