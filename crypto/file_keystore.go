package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 600000
	pbkdf2KeyLen     = 32
	saltLen          = 16
)

// FileKeyStore persists keys to a directory, one JSON file per name, with
// the private key material encrypted at rest under a passphrase-derived
// key (PBKDF2-HMAC-SHA256, per-key random salt, AES-256-GCM).
type FileKeyStore struct {
	mu         sync.Mutex
	dir        string
	passphrase []byte
}

// NewFileKeyStore opens (creating if needed) a key directory protected by
// passphrase. The passphrase is never stored; losing it makes existing
// keys unrecoverable.
func NewFileKeyStore(dir string, passphrase []byte) (*FileKeyStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileKeyStore{dir: dir, passphrase: append([]byte(nil), passphrase...)}, nil
}

func (f *FileKeyStore) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *FileKeyStore) deriveKey(salt []byte) []byte {
	return pbkdf2.Key(f.passphrase, salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
}

func (f *FileKeyStore) Store(name string, key EncryptedKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	block, err := aes.NewCipher(f.deriveKey(salt))
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	stored := key.copy()
	stored.Name = name
	stored.Salt = salt
	stored.Nonce = nonce
	stored.PrivKeyData = gcm.Seal(nil, nonce, key.PrivKeyData, nil)

	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(name), raw, 0o600)
}

func (f *FileKeyStore) Load(name string) (EncryptedKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path(name))
	if os.IsNotExist(err) {
		return EncryptedKey{}, ErrKeyStoreNotFound
	}
	if err != nil {
		return EncryptedKey{}, err
	}

	var stored EncryptedKey
	if err := json.Unmarshal(raw, &stored); err != nil {
		return EncryptedKey{}, err
	}

	block, err := aes.NewCipher(f.deriveKey(stored.Salt))
	if err != nil {
		return EncryptedKey{}, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return EncryptedKey{}, err
	}
	plain, err := gcm.Open(nil, stored.Nonce, stored.PrivKeyData, nil)
	if err != nil {
		return EncryptedKey{}, ErrInvalidPassphrase
	}

	stored.PrivKeyData = plain
	stored.Salt = nil
	stored.Nonce = nil
	return stored, nil
}

func (f *FileKeyStore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrKeyStoreNotFound
		}
		return err
	}
	return nil
}

func (f *FileKeyStore) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".json" {
			continue
		}
		names = append(names, e.Name()[:len(e.Name())-len(ext)])
	}
	return names, nil
}

func (f *FileKeyStore) Has(name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := os.Stat(f.path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
