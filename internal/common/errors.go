// Package common defines shared sentinel errors and small helpers used
// across the vault layers. Callers should use errors.Is to match the
// sentinels; most of them travel wrapped with call-site context.
package common

import "errors"

var (
	// Catalog-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrorBackend marks transient storage failures (network, object store,
	// database). It is the only error class the CLI retries.
	ErrorBackend = errors.New("storage backend failure")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorDecryption is surfaced when stored ciphertext fails
	// authentication. A wrong password and corrupted data are deliberately
	// indistinguishable at this level.
	ErrorDecryption = errors.New("wrong password or corrupted data")
)
