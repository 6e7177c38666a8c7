package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/cryptox"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/models"
	"github.com/dmitrijs2005/filevault/internal/session"
	"github.com/dmitrijs2005/filevault/internal/storage"
	"github.com/dmitrijs2005/filevault/internal/thumbnail"
)

// BlobIDSize is the number of random bytes in a blob identifier.
// The resulting hex string is twice as long.
const BlobIDSize = 16

// FileService defines the vault file operations. Every operation takes
// the caller's session; content and metadata are encrypted with the
// session master key before they reach the catalog and decrypted after
// they come back.
type FileService interface {
	Upload(ctx context.Context, sess *session.Session, name string, contentType string, data []byte) (string, error)
	Download(ctx context.Context, sess *session.Session, id string) (*DownloadResult, error)
	DownloadThumbnail(ctx context.Context, sess *session.Session, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, sess *session.Session) ([]models.DecryptedFile, error)
}

// DownloadResult is a decrypted file with its original name and media type.
type DownloadResult struct {
	Name string
	Type string
	Data []byte
}

type fileService struct {
	catalog storage.Catalog
	thumbs  thumbnail.Generator
	logger  logging.Logger
}

// NewFileService constructs a FileService bound to the given catalog.
func NewFileService(catalog storage.Catalog, thumbs thumbnail.Generator, logger logging.Logger) FileService {
	return &fileService{catalog: catalog, thumbs: thumbs, logger: logger}
}

// Upload encrypts the file body and metadata, stores the ciphertext
// blobs, and writes the catalog record. For image content it also tries
// to attach an encrypted preview; a preview generation failure is logged
// and the upload continues without one. Returns the new record id.
func (s *fileService) Upload(ctx context.Context, sess *session.Session, name string, contentType string, data []byte) (string, error) {
	key := sess.Key()
	if key == nil {
		return "", common.ErrorUnauthorized
	}

	body, bodyIV, err := cryptox.Encrypt(data, key)
	if err != nil {
		return "", fmt.Errorf("encryption error: %w", err)
	}

	blobID, err := common.MakeRandHexString(BlobIDSize)
	if err != nil {
		return "", fmt.Errorf("blob id error: %w", err)
	}
	if err := s.catalog.PutBlob(ctx, blobID, body); err != nil {
		return "", err
	}

	thumbBlobID, thumbIV, err := s.uploadThumbnail(ctx, key, name, contentType, data)
	if err != nil {
		return "", err
	}

	meta := models.FileMeta{Name: name, Type: contentType, Size: int64(len(data))}
	metaText, metaIV, err := cryptox.EncodeMetadata(meta, key)
	if err != nil {
		return "", fmt.Errorf("metadata encryption error: %w", err)
	}

	rec := &models.FileRecord{
		ID:          uuid.NewString(),
		OwnerID:     sess.UserID(),
		BlobID:      blobID,
		BodyIV:      bodyIV,
		Metadata:    metaText,
		MetadataIV:  metaIV,
		ThumbBlobID: thumbBlobID,
		ThumbIV:     thumbIV,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.catalog.PutFile(ctx, rec); err != nil {
		s.logger.Warn(ctx, "file record write failed, ciphertext blobs orphaned", "blob_id", blobID)
		return "", err
	}
	return rec.ID, nil
}

// uploadThumbnail generates, encrypts, and stores a preview for image
// content. Non-image content and preview generation failures yield
// empty ids with a nil error; failures past generation abort the upload.
func (s *fileService) uploadThumbnail(ctx context.Context, key []byte, name string, contentType string, data []byte) (string, []byte, error) {
	if !thumbnail.IsImageContent(contentType) {
		return "", nil, nil
	}

	preview, err := s.thumbs.Thumbnail(data, contentType)
	if err != nil {
		s.logger.Warn(ctx, "preview generation failed", "name", name, "error", err)
		return "", nil, nil
	}

	ciphertext, iv, err := cryptox.Encrypt(preview, key)
	if err != nil {
		return "", nil, fmt.Errorf("preview encryption error: %w", err)
	}
	id, err := common.MakeRandHexString(BlobIDSize)
	if err != nil {
		return "", nil, fmt.Errorf("blob id error: %w", err)
	}
	if err := s.catalog.PutBlob(ctx, id, ciphertext); err != nil {
		return "", nil, err
	}
	return id, iv, nil
}

// Download fetches and decrypts a file body together with its metadata.
func (s *fileService) Download(ctx context.Context, sess *session.Session, id string) (*DownloadResult, error) {
	key := sess.Key()
	if key == nil {
		return nil, common.ErrorUnauthorized
	}

	rec, err := s.catalog.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := s.catalog.GetBlob(ctx, rec.BlobID)
	if err != nil {
		return nil, err
	}

	data, err := cryptox.Decrypt(body, rec.BodyIV, key)
	if err != nil {
		if errors.Is(err, cryptox.ErrIntegrity) {
			return nil, common.ErrorDecryption
		}
		return nil, err
	}

	var meta models.FileMeta
	if err := cryptox.DecodeMetadata(rec.Metadata, rec.MetadataIV, key, &meta); err != nil {
		return nil, common.ErrorDecryption
	}

	return &DownloadResult{Name: meta.Name, Type: meta.Type, Data: data}, nil
}

// DownloadThumbnail fetches and decrypts a file's preview image.
// Files without a preview yield common.ErrorNotFound.
func (s *fileService) DownloadThumbnail(ctx context.Context, sess *session.Session, id string) ([]byte, error) {
	key := sess.Key()
	if key == nil {
		return nil, common.ErrorUnauthorized
	}

	rec, err := s.catalog.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.HasThumbnail() {
		return nil, common.ErrorNotFound
	}

	ciphertext, err := s.catalog.GetBlob(ctx, rec.ThumbBlobID)
	if err != nil {
		return nil, err
	}
	preview, err := cryptox.Decrypt(ciphertext, rec.ThumbIV, key)
	if err != nil {
		if errors.Is(err, cryptox.ErrIntegrity) {
			return nil, common.ErrorDecryption
		}
		return nil, err
	}
	return preview, nil
}

// Delete removes a file's ciphertext blobs and then its catalog record.
// Blob removal comes first so a partial failure leaves a retryable
// record rather than unreachable ciphertext.
func (s *fileService) Delete(ctx context.Context, id string) error {
	rec, err := s.catalog.GetFile(ctx, id)
	if err != nil {
		return err
	}

	ids := []string{rec.BlobID}
	if rec.HasThumbnail() {
		ids = append(ids, rec.ThumbBlobID)
	}
	if err := s.catalog.DeleteBlobs(ctx, ids); err != nil {
		return err
	}
	return s.catalog.DeleteFile(ctx, id)
}

// List returns the caller's files with decrypted metadata, oldest
// first. Entries whose metadata cannot be decrypted are logged and
// skipped rather than failing the whole listing.
func (s *fileService) List(ctx context.Context, sess *session.Session) ([]models.DecryptedFile, error) {
	key := sess.Key()
	if key == nil {
		return nil, common.ErrorUnauthorized
	}

	rows, err := s.catalog.ListFiles(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}

	result := make([]models.DecryptedFile, 0, len(rows))
	for _, row := range rows {
		var meta models.FileMeta
		if err := cryptox.DecodeMetadata(row.Metadata, row.MetadataIV, key, &meta); err != nil {
			s.logger.Warn(ctx, "skipping entry with undecryptable metadata", "id", row.ID, "error", err)
			continue
		}
		result = append(result, models.DecryptedFile{
			ID:        row.ID,
			Name:      meta.Name,
			Type:      meta.Type,
			Size:      meta.Size,
			CreatedAt: row.CreatedAt,
		})
	}
	return result, nil
}
