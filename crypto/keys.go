package crypto

// PublicKey is an algorithm-agnostic public key. Implementations must be
// safe for concurrent use; they hold no secret material.
type PublicKey interface {
	// Algorithm returns the signing algorithm this key belongs to.
	Algorithm() Algorithm

	// Bytes returns the canonical (compressed, where applicable) encoding
	// of the public key.
	Bytes() []byte

	// Verify checks sig against the given message digest. Implementations
	// hash message themselves; callers pass the raw signed bytes, not a
	// pre-hashed digest, to keep the hashing domain in one place.
	Verify(message, sig []byte) bool

	// Equals reports whether other encodes the same key under the same
	// algorithm.
	Equals(other PublicKey) bool

	// String returns a hex encoding of Bytes, for logs and errors.
	String() string
}

// PrivateKey is an algorithm-agnostic private signing key.
type PrivateKey interface {
	// Algorithm returns the signing algorithm this key belongs to.
	Algorithm() Algorithm

	// Bytes returns the raw private scalar. Callers that persist this
	// value are responsible for protecting it; see KeyStore.
	Bytes() []byte

	// Public returns the corresponding public key.
	Public() PublicKey

	// Sign produces a deterministic signature over message.
	Sign(message []byte) ([]byte, error)
}

// Address is a public-key-derived account identifier: the low 20 bytes of
// the SHA-256 hash of the key's canonical encoding.
type Address [20]byte

// AddressFromPublicKey derives the Address a validator or client uses to
// identify the holder of pub.
func AddressFromPublicKey(pub PublicKey) Address {
	digest := sha256Sum(pub.Bytes())
	var addr Address
	copy(addr[:], digest[len(digest)-len(addr):])
	return addr
}

// IsZero reports whether a is the zero address (used as "no address").
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Bytes() []byte {
	b := make([]byte, len(a))
	copy(b, a[:])
	return b
}

func (a Address) String() string {
	return hexEncode(a[:])
}

// MarshalText implements encoding.TextMarshaler so Address round-trips
// through JSON as a hex string.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := hexDecode(string(text))
	if err != nil {
		return err
	}
	if len(decoded) != len(a) {
		return ErrInvalidPublicKey
	}
	copy(a[:], decoded)
	return nil
}

// AddressFromBytes validates and wraps raw address bytes.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != len(a) {
		return a, ErrInvalidPublicKey
	}
	copy(a[:], b)
	return a, nil
}
