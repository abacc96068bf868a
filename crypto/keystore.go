package crypto

// EncryptedKey is a stored validator signing key. For the file-backed
// store PrivKeyData is ciphertext and Salt/Nonce are populated; for the
// in-memory store PrivKeyData is the raw key and Salt/Nonce are empty.
type EncryptedKey struct {
	Name        string    `json:"name"`
	Algorithm   Algorithm `json:"algorithm"`
	PubKey      []byte    `json:"pub_key"`
	PrivKeyData []byte    `json:"priv_key_data"`
	Salt        []byte    `json:"salt,omitempty"`
	Nonce       []byte    `json:"nonce,omitempty"`
}

func (k EncryptedKey) copy() EncryptedKey {
	clone := k
	clone.PubKey = append([]byte(nil), k.PubKey...)
	clone.PrivKeyData = append([]byte(nil), k.PrivKeyData...)
	clone.Salt = append([]byte(nil), k.Salt...)
	clone.Nonce = append([]byte(nil), k.Nonce...)
	return clone
}

// KeyStore is a named store for a validator's own signing key material.
// Client-side wallet/key-derivation concerns are explicitly out of scope
// (spec.md §1); this exists only so cmd/validatord has somewhere to load
// the validator's identity key from.
type KeyStore interface {
	Store(name string, key EncryptedKey) error
	Load(name string) (EncryptedKey, error)
	Delete(name string) error
	List() ([]string, error)
	Has(name string) (bool, error)
}
