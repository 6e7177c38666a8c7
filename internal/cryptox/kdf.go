package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 master key length in bytes.
	KeySize = 32
	// SaltSize is the per-credential KDF salt length in bytes.
	SaltSize = 16
	// IVSize is the GCM nonce length used for every sealed artifact.
	IVSize = 12

	// Iterations is the PBKDF2-HMAC-SHA256 work factor. Changing it would
	// change every key derived from existing credentials, so it is fixed
	// for the life of the stored data.
	Iterations = 100_000
)

// DeriveMasterKey stretches a password into a 256-bit master key using
// PBKDF2-HMAC-SHA256. The function is deterministic: the same password and
// salt always yield the same key, which is what lets a client re-derive the
// key at login instead of storing it anywhere.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return pbkdf2.Key(password, salt, Iterations, KeySize, sha256.New)
}

// GenerateSalt returns SaltSize bytes from the CSPRNG. Every credential
// gets a fresh salt at registration; salts are stored in the clear next to
// the verifier.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return salt, nil
}
