package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// NewAESGCM creates an AES-256-GCM sealer from a 32-byte key.
func NewAESGCM(key []byte) (Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("create cipher: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &aeadSealer{aead: gcm}, nil
}
