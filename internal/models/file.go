package models

import "time"

// FileMeta is the plaintext metadata sealed into a FileRecord. The JSON
// field names are part of the persisted format.
type FileMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// FileRecord is the catalog row for one stored file.
type FileRecord struct {
	// ID is the random identifier assigned at upload.
	ID string
	// OwnerID is the user the file belongs to.
	OwnerID string

	// BlobID locates the body ciphertext in the blob side of the catalog.
	BlobID string
	// BodyIV is the AEAD nonce the body was sealed with.
	BodyIV []byte

	// Metadata is the base64 ciphertext of the JSON-encoded FileMeta.
	Metadata string
	// MetadataIV is the AEAD nonce the metadata was sealed with.
	MetadataIV []byte

	// ThumbBlobID and ThumbIV locate and open the optional thumbnail.
	// Both are empty when no thumbnail was stored.
	ThumbBlobID string
	ThumbIV     []byte

	CreatedAt time.Time
}

// HasThumbnail reports whether the record carries an encrypted thumbnail.
func (r *FileRecord) HasThumbnail() bool {
	return r.ThumbBlobID != ""
}

// DecryptedFile is one listing row after metadata decryption. It exists
// only in memory, for display.
type DecryptedFile struct {
	ID        string
	Name      string
	Type      string
	Size      int64
	CreatedAt time.Time
}
