// Package cryptox implements the cryptographic core of the vault: password
// key derivation, the AES-256-GCM envelope used for file bodies and
// metadata, and the key verifier created at registration. Everything above
// this package treats ciphertext as opaque bytes.
package cryptox

import "errors"

var (
	// ErrKeyDerivation signals an unrecoverable failure of the underlying
	// primitives, in practice a broken random source. Not retryable.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrIntegrity is the single failure mode of Decrypt. Ciphertext
	// corruption, a flipped IV bit and a wrong key are indistinguishable.
	ErrIntegrity = errors.New("message authentication failed")

	// ErrMalformedMetadata reports a metadata field that cannot be decoded
	// as base64 or, after decryption, as JSON.
	ErrMalformedMetadata = errors.New("malformed metadata")
)
