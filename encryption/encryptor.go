package encryption

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Sealer encrypts and authenticates small records such as stored client
// snapshots. aad is authenticated but not encrypted; Open fails unless it
// matches the value given to Seal.
type Sealer interface {
	Seal(plaintext, aad []byte) ([]byte, error)
	Open(sealed, aad []byte) ([]byte, error)
}

// Algorithm represents supported encryption algorithms.
type Algorithm string

const (
	// AlgorithmChaCha20 is XChaCha20-Poly1305 (default, random nonces are safe).
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"

	// AlgorithmAESGCM is AES-256-GCM.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
)

// KeySize is the key length of both algorithms.
const KeySize = 32

// Option configures New.
type Option func(*options)

type options struct {
	algorithm Algorithm
}

// WithAlgorithm selects the algorithm (default: XChaCha20-Poly1305).
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

// New creates a Sealer keyed from a passphrase.
func New(passphrase string, opts ...Option) (Sealer, error) {
	o := &options{algorithm: AlgorithmChaCha20}
	for _, opt := range opts {
		opt(o)
	}
	if passphrase == "" {
		return nil, fmt.Errorf("encryption: empty passphrase")
	}

	key, err := DeriveKey(passphrase, o.algorithm)
	if err != nil {
		return nil, err
	}
	switch o.algorithm {
	case AlgorithmChaCha20:
		return NewChaCha20(key)
	case AlgorithmAESGCM:
		return NewAESGCM(key)
	default:
		return nil, fmt.Errorf("encryption: unknown algorithm %q", o.algorithm)
	}
}

// DeriveKey stretches a passphrase into a KeySize key with HKDF-SHA256. The
// algorithm name is the HKDF info, so each algorithm gets its own key.
func DeriveKey(passphrase string, alg Algorithm) ([]byte, error) {
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("apihelper/"+alg))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
