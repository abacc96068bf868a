package crypto

import "errors"

var (
	// ErrUnsupportedAlgorithm is returned when an algorithm has no signer
	// implementation.
	ErrUnsupportedAlgorithm = errors.New("crypto: unsupported algorithm")

	// ErrInvalidPrivateKey is returned for malformed private key bytes.
	ErrInvalidPrivateKey = errors.New("crypto: invalid private key")

	// ErrInvalidPublicKey is returned for malformed public key bytes.
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")

	// ErrInvalidSignature is returned for a malformed (not merely
	// non-verifying) signature encoding.
	ErrInvalidSignature = errors.New("crypto: invalid signature encoding")

	// ErrKeyStoreNotFound is returned when a named key is absent from a
	// KeyStore.
	ErrKeyStoreNotFound = errors.New("crypto: key not found in store")

	// ErrKeyStoreExists is returned when storing a key whose name is
	// already taken.
	ErrKeyStoreExists = errors.New("crypto: key already exists in store")

	// ErrKeyStoreClosed is returned by a KeyStore after Close.
	ErrKeyStoreClosed = errors.New("crypto: key store closed")

	// ErrInvalidPassphrase is returned when a file-backed key fails to
	// decrypt under the supplied passphrase.
	ErrInvalidPassphrase = errors.New("crypto: invalid passphrase")
)
