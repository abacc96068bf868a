package crypto

import (
	"encoding/json"
	"errors"

	"github.com/zalando/go-keyring"
)

// KeychainStore stores keys unencrypted-on-the-wire-but-OS-protected in
// the platform keychain (macOS Keychain, Secret Service on Linux, etc).
// There is no separate passphrase: the OS keychain's own access control
// is the protection boundary, matching how go-keyring is used upstream.
type KeychainStore struct {
	service string
}

// NewKeychainStore opens a keychain-backed store under service, a
// namespacing string (e.g. "fquorum-validator") so multiple instances on
// one machine don't collide.
func NewKeychainStore(service string) *KeychainStore {
	return &KeychainStore{service: service}
}

func (k *KeychainStore) Store(name string, key EncryptedKey) error {
	key.Name = name
	raw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	return keyring.Set(k.service, name, string(raw))
}

func (k *KeychainStore) Load(name string) (EncryptedKey, error) {
	raw, err := keyring.Get(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return EncryptedKey{}, ErrKeyStoreNotFound
	}
	if err != nil {
		return EncryptedKey{}, err
	}
	var key EncryptedKey
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		return EncryptedKey{}, err
	}
	return key, nil
}

func (k *KeychainStore) Delete(name string) error {
	err := keyring.Delete(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrKeyStoreNotFound
	}
	return err
}

// List is unsupported: the OS keychain APIs go-keyring wraps don't expose
// enumeration by service. Callers that need to list available keys
// should track names themselves (e.g. in validator config) and probe
// with Has.
func (k *KeychainStore) List() ([]string, error) {
	return nil, errors.New("crypto: KeychainStore does not support listing")
}

func (k *KeychainStore) Has(name string) (bool, error) {
	_, err := keyring.Get(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
