// Package session holds the in-memory authentication state of one vault
// user: the user id and the derived master key. A Session is created by a
// successful login or registration and passed explicitly to every operation
// that needs the key; there is no package-level state.
package session

import (
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
)

// Session is the live result of authentication. The master key it holds
// exists only in memory and is wiped by Close.
type Session struct {
	userID    string
	masterKey []byte
	createdAt time.Time
}

// New takes ownership of masterKey; the caller must not use or wipe the
// slice afterwards.
func New(userID string, masterKey []byte) *Session {
	return &Session{
		userID:    userID,
		masterKey: masterKey,
		createdAt: time.Now(),
	}
}

// UserID returns the authenticated user id.
func (s *Session) UserID() string {
	return s.userID
}

// Key returns the master key for cryptographic use. Returns nil after
// Close. Callers must not retain or modify the slice.
func (s *Session) Key() []byte {
	return s.masterKey
}

// CreatedAt returns the login time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Close zeroes the master key and detaches it from the session. Safe to
// call more than once.
func (s *Session) Close() {
	common.WipeByteArray(s.masterKey)
	s.masterKey = nil
}
