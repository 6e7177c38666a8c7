package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// Encrypt seals plaintext under key using AES-GCM.
//
// The key must be a valid AES key length (16, 24, or 32 bytes); the vault
// always passes the 32-byte master key. A new random 12-byte IV is generated
// for each call, so encrypting the same plaintext twice yields different
// ciphertext. The ciphertext and IV are returned separately and are only
// valid as a pair.
//
// Returns:
//   - ciphertext: the sealed data, including the 16-byte GCM tag.
//   - iv: the randomly generated 12-byte IV.
//   - err: non-nil if IV generation or cipher construction fails.
func Encrypt(plaintext, key []byte) (ciphertext, iv []byte, err error) {

	// iv
	iv = make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("iv generation: %w", err)
	}

	aesgcm, err := newAEAD(key)
	if err != nil {
		return nil, nil, err
	}

	// encrypting
	ciphertext = aesgcm.Seal(nil, iv, plaintext, nil)

	return ciphertext, iv, nil
}

// Decrypt opens ciphertext sealed by Encrypt.
//
// The key must be the same key the data was sealed under, and iv the IV
// returned alongside the ciphertext. Any authentication failure, whether
// from a modified ciphertext, a modified IV, or a wrong key, is reported as
// ErrIntegrity; callers cannot tell the cases apart.
func Decrypt(ciphertext, iv, key []byte) ([]byte, error) {
	aesgcm, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	// Open panics on an IV of the wrong length, so a truncated or padded
	// IV from a damaged record is rejected here instead.
	if len(iv) != aesgcm.NonceSize() {
		return nil, ErrIntegrity
	}

	plaintext, err := aesgcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrIntegrity
	}

	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
