// Package encryption seals stored client snapshots with an AEAD cipher.
//
// XChaCha20-Poly1305 is the default; AES-256-GCM is available. Keys are
// derived from a passphrase with HKDF-SHA256.
//
//	s, err := encryption.New(os.Getenv("APIHELPER_STORE_KEY"))
//	sealed, err := s.Seal(snapshotJSON, []byte("vk/default"))
//	plain, err := s.Open(sealed, []byte("vk/default"))
package encryption
