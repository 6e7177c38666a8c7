// Package storage defines the catalog abstraction the vault operates
// against. A catalog has two sides: a blob side holding opaque ciphertext
// bodies keyed by random ids, and a record side holding credentials and
// file records. Neither side can interpret what it stores.
//
// Two implementations exist: storage/local (a single SQLite file) and
// storage/remote (S3-compatible object storage plus PostgreSQL).
package storage

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/models"
)

// Catalog is the persistence contract used by the services layer.
// Implementations must be safe for concurrent use.
type Catalog interface {
	// PutBlob stores ciphertext under the given id, overwriting any
	// previous content with the same id.
	PutBlob(ctx context.Context, id string, data []byte) error

	// GetBlob returns the ciphertext stored under id, or ErrorNotFound.
	GetBlob(ctx context.Context, id string) ([]byte, error)

	// DeleteBlobs removes the given blobs. Ids that do not exist are
	// ignored, so the call is safe to retry.
	DeleteBlobs(ctx context.Context, ids []string) error

	// PutCredential stores a new credential. Returns ErrorAlreadyExists
	// if the user id is taken.
	PutCredential(ctx context.Context, cred *models.Credential) error

	// GetCredential returns the credential for userID, or ErrorNotFound.
	GetCredential(ctx context.Context, userID string) (*models.Credential, error)

	// PutFile upserts a file record by id.
	PutFile(ctx context.Context, rec *models.FileRecord) error

	// GetFile returns the file record for id, or ErrorNotFound.
	GetFile(ctx context.Context, id string) (*models.FileRecord, error)

	// ListFiles returns all file records owned by ownerID, oldest first.
	ListFiles(ctx context.Context, ownerID string) ([]*models.FileRecord, error)

	// DeleteFile removes the file record for id, or returns ErrorNotFound
	// if there is no such record.
	DeleteFile(ctx context.Context, id string) error

	// Close releases the underlying connections.
	Close() error
}
