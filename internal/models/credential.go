// Package models defines the data records persisted in the vault catalog.
// Every field is either ciphertext, a crypto artifact, or routing data; the
// catalog never holds a filename, file body or password in the clear.
package models

import (
	"time"

	"github.com/dmitrijs2005/filevault/internal/cryptox"
)

// Credential is the stored registration record for one user: the KDF salt
// and the key verifier. The master key itself is never persisted, it is
// re-derived from the password at every login.
type Credential struct {
	UserID    string
	Salt      []byte
	Verifier  cryptox.Verifier
	CreatedAt time.Time
}
