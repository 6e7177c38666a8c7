package cryptox

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// EncodeMetadata serializes the given value to JSON, encrypts it under key,
// and encodes the ciphertext as standard base64 so it can live in a text
// column of the catalog. The IV is returned separately, raw.
//
// Parameters:
//   - v: any Go value that can be marshaled to JSON.
//   - key: the AES encryption key.
func EncodeMetadata(v any, key []byte) (text string, iv []byte, err error) {

	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("metadata marshal: %w", err)
	}

	ciphertext, iv, err := Encrypt(plaintext, key)
	if err != nil {
		return "", nil, err
	}

	return base64.StdEncoding.EncodeToString(ciphertext), iv, nil
}

// DecodeMetadata reverses EncodeMetadata, unmarshaling the decrypted JSON
// into the provided value v.
//
// Text that is not valid base64, or plaintext that is not valid JSON, is
// reported as ErrMalformedMetadata. An authentication failure during
// decryption propagates as ErrIntegrity.
func DecodeMetadata(text string, iv, key []byte, v any) error {
	ciphertext, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	plaintext, err := Decrypt(ciphertext, iv, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	return nil
}
