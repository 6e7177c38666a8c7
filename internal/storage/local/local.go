// Package local implements the vault catalog as a single SQLite database
// file. Blobs, credentials and file records share one database, so a local
// vault is fully self-contained and needs no network at all.
package local

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/cryptox"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/models"
	"github.com/dmitrijs2005/filevault/internal/storage/local/migrations"
)

// Catalog is the SQLite-backed catalog. Safe for concurrent use; the
// connection pool is capped at one connection because SQLite allows a
// single writer anyway.
type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and applies pending schema
// migrations.
func Open(ctx context.Context, dsn string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &Catalog{db: db}, nil
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func (c *Catalog) PutBlob(ctx context.Context, id string, data []byte) error {
	query := `INSERT INTO blobs (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`

	if _, err := c.db.ExecContext(ctx, query, id, data); err != nil {
		return fmt.Errorf("%w: failed to put blob: %v", common.ErrorBackend, err)
	}
	return nil
}

func (c *Catalog) GetBlob(ctx context.Context, id string) ([]byte, error) {
	query := `SELECT data FROM blobs WHERE id = ?`

	var data []byte
	if err := c.db.QueryRowContext(ctx, query, id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: failed to get blob: %v", common.ErrorBackend, err)
	}
	return data, nil
}

// DeleteBlobs removes all listed blobs in one transaction, so a file and
// its thumbnail disappear together or not at all.
func (c *Catalog) DeleteBlobs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `DELETE FROM blobs WHERE id = ?`, id); err != nil {
				return fmt.Errorf("failed to delete blob %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return nil
}

func (c *Catalog) PutCredential(ctx context.Context, cred *models.Credential) error {
	query := `INSERT INTO credentials (user_id, salt, verifier_iv, verifier_ct, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`

	res, err := c.db.ExecContext(ctx, query,
		cred.UserID,
		cred.Salt,
		base64.StdEncoding.EncodeToString(cred.Verifier.IV),
		base64.StdEncoding.EncodeToString(cred.Verifier.Ciphertext),
		cred.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to put credential: %v", common.ErrorBackend, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", common.ErrorBackend, err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (c *Catalog) GetCredential(ctx context.Context, userID string) (*models.Credential, error) {
	query := `SELECT user_id, salt, verifier_iv, verifier_ct, created_at
		FROM credentials WHERE user_id = ?`

	var (
		cred      models.Credential
		ivText    string
		ctText    string
		createdAt int64
	)
	err := c.db.QueryRowContext(ctx, query, userID).Scan(
		&cred.UserID, &cred.Salt, &ivText, &ctText, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: failed to get credential: %v", common.ErrorBackend, err)
	}

	verifier, err := decodeVerifier(ivText, ctText)
	if err != nil {
		return nil, err
	}
	cred.Verifier = *verifier
	cred.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &cred, nil
}

func (c *Catalog) PutFile(ctx context.Context, rec *models.FileRecord) error {
	query := `INSERT INTO files
		(id, owner_id, blob_id, body_iv, metadata, metadata_iv, thumb_blob_id, thumb_iv, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			blob_id = excluded.blob_id,
			body_iv = excluded.body_iv,
			metadata = excluded.metadata,
			metadata_iv = excluded.metadata_iv,
			thumb_blob_id = excluded.thumb_blob_id,
			thumb_iv = excluded.thumb_iv`

	_, err := c.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.BlobID, rec.BodyIV, rec.Metadata, rec.MetadataIV,
		nullString(rec.ThumbBlobID), rec.ThumbIV, rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("%w: failed to put file record: %v", common.ErrorBackend, err)
	}
	return nil
}

func (c *Catalog) GetFile(ctx context.Context, id string) (*models.FileRecord, error) {
	query := `SELECT id, owner_id, blob_id, body_iv, metadata, metadata_iv,
		thumb_blob_id, thumb_iv, created_at
		FROM files WHERE id = ?`

	rec, err := scanFileRecord(c.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: failed to get file record: %v", common.ErrorBackend, err)
	}
	return rec, nil
}

func (c *Catalog) ListFiles(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	query := `SELECT id, owner_id, blob_id, body_iv, metadata, metadata_iv,
		thumb_blob_id, thumb_iv, created_at
		FROM files WHERE owner_id = ? ORDER BY created_at, id`

	rows, err := c.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list file records: %v", common.ErrorBackend, err)
	}
	defer rows.Close()

	var result []*models.FileRecord
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan file record: %v", common.ErrorBackend, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return result, nil
}

func (c *Catalog) DeleteFile(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete file record: %v", common.ErrorBackend, err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", common.ErrorBackend, err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFileRecord(row rowScanner) (*models.FileRecord, error) {
	var (
		rec       models.FileRecord
		thumbID   sql.NullString
		createdAt int64
	)
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.BlobID, &rec.BodyIV,
		&rec.Metadata, &rec.MetadataIV, &thumbID, &rec.ThumbIV, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.ThumbBlobID = thumbID.String
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &rec, nil
}

func decodeVerifier(ivText, ctText string) (*cryptox.Verifier, error) {
	iv, err := base64.StdEncoding.DecodeString(ivText)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt verifier iv: %v", common.ErrorInternal, err)
	}
	ct, err := base64.StdEncoding.DecodeString(ctText)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt verifier ciphertext: %v", common.ErrorInternal, err)
	}
	return &cryptox.Verifier{IV: iv, Ciphertext: ct}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
