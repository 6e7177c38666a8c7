package cryptox

import "crypto/subtle"

// verifierPlaintext is the fixed confirmation constant sealed under a master
// key at registration. Decrypting it back proves possession of the key; the
// stored artifact reveals nothing about the password to anyone without it.
var verifierPlaintext = []byte("filevault key confirmation v1")

// Verifier is the stored key-confirmation artifact for one credential.
type Verifier struct {
	IV         []byte
	Ciphertext []byte
}

// MakeVerifier seals the confirmation constant under key with a fresh IV.
func MakeVerifier(key []byte) (*Verifier, error) {
	ciphertext, iv, err := Encrypt(verifierPlaintext, key)
	if err != nil {
		return nil, err
	}
	return &Verifier{IV: iv, Ciphertext: ciphertext}, nil
}

// CheckVerifier reports whether key opens the stored verifier to the
// confirmation constant. A wrong key, a tampered verifier and a structurally
// malformed one all return false with no further detail.
func CheckVerifier(key []byte, v *Verifier) bool {
	if v == nil {
		return false
	}

	plaintext, err := Decrypt(v.Ciphertext, v.IV, key)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(plaintext, verifierPlaintext) == 1
}
