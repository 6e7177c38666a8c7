// Package remote implements the vault catalog against networked backends:
// ciphertext blobs go to S3-compatible object storage, credentials and file
// records go to PostgreSQL. Both backends only ever see ciphertext and
// routing data.
package remote

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/models"
)

// Config holds the connection settings for both remote backends.
type Config struct {
	DatabaseDSN    string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// Catalog composes the S3 blob store and the PostgreSQL record store into
// one storage.Catalog.
type Catalog struct {
	blobs   *BlobStore
	records *RecordStore
}

// Open connects both backends and applies record store migrations.
func Open(ctx context.Context, cfg Config) (*Catalog, error) {
	blobs, err := NewBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	records, err := NewRecordStore(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return &Catalog{blobs: blobs, records: records}, nil
}

func (c *Catalog) PutBlob(ctx context.Context, id string, data []byte) error {
	return c.blobs.Put(ctx, id, data)
}

func (c *Catalog) GetBlob(ctx context.Context, id string) ([]byte, error) {
	return c.blobs.Get(ctx, id)
}

func (c *Catalog) DeleteBlobs(ctx context.Context, ids []string) error {
	return c.blobs.Delete(ctx, ids)
}

func (c *Catalog) PutCredential(ctx context.Context, cred *models.Credential) error {
	return c.records.PutCredential(ctx, cred)
}

func (c *Catalog) GetCredential(ctx context.Context, userID string) (*models.Credential, error) {
	return c.records.GetCredential(ctx, userID)
}

func (c *Catalog) PutFile(ctx context.Context, rec *models.FileRecord) error {
	return c.records.PutFile(ctx, rec)
}

func (c *Catalog) GetFile(ctx context.Context, id string) (*models.FileRecord, error) {
	return c.records.GetFile(ctx, id)
}

func (c *Catalog) ListFiles(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	return c.records.ListFiles(ctx, ownerID)
}

func (c *Catalog) DeleteFile(ctx context.Context, id string) error {
	return c.records.DeleteFile(ctx, id)
}

// Close shuts down the database connection. The blob store holds no
// persistent connections of its own.
func (c *Catalog) Close() error {
	return c.records.Close()
}
