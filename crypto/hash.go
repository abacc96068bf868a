package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash is a 32-byte content digest, used both for transaction IDs and as
// the vote payload identifying a transaction.
type Hash [32]byte

// ZeroHash is the sentinel payload value; votes carrying it are "bottom"
// (⊥) votes rather than votes for a transaction.
var ZeroHash = Hash{}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) Bytes() []byte {
	b := make([]byte, len(h))
	copy(b, h[:])
	return b
}

func (h Hash) String() string {
	return hexEncode(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	decoded, err := hexDecode(string(text))
	if err != nil {
		return err
	}
	if len(decoded) != len(h) {
		return ErrInvalidPublicKey
	}
	copy(h[:], decoded)
	return nil
}

// SumHash content-addresses an arbitrary byte string.
func SumHash(data []byte) Hash {
	return Hash(sha256Sum(data))
}

func sha256Sum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// DomainHash computes a domain-separated digest: sha256(domain || 0x00 ||
// concat(parts)). The domain tag and the 0x00 separator prevent a
// signature over one message kind (e.g. a vote) from being replayable as a
// signature over a differently-structured message that happens to share
// leading bytes.
func DomainHash(domain string, parts ...[]byte) Hash {
	buf := make([]byte, 0, len(domain)+1+sumLens(parts))
	buf = append(buf, domain...)
	buf = append(buf, 0x00)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return SumHash(buf)
}

func sumLens(parts [][]byte) int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	return n
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
