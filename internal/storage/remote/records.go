package remote

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/cryptox"
	"github.com/dmitrijs2005/filevault/internal/models"
	"github.com/dmitrijs2005/filevault/internal/storage/remote/migrations"
)

// RecordStore keeps credentials and file records in PostgreSQL.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore connects to the database at dsn and applies pending schema
// migrations.
func NewRecordStore(ctx context.Context, dsn string) (*RecordStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &RecordStore{db: db}, nil
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func (r *RecordStore) PutCredential(ctx context.Context, cred *models.Credential) error {
	query := `INSERT INTO credentials (user_id, salt, verifier_iv, verifier_ct, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		cred.UserID,
		cred.Salt,
		base64.StdEncoding.EncodeToString(cred.Verifier.IV),
		base64.StdEncoding.EncodeToString(cred.Verifier.Ciphertext),
		cred.CreatedAt,
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

func (r *RecordStore) GetCredential(ctx context.Context, userID string) (*models.Credential, error) {
	query := `SELECT user_id, salt, verifier_iv, verifier_ct, created_at
		FROM credentials WHERE user_id = $1`

	var (
		cred   models.Credential
		ivText string
		ctText string
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cred.UserID, &cred.Salt, &ivText, &ctText, &cred.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: failed to get credential: %v", common.ErrorBackend, err)
	}

	iv, err := base64.StdEncoding.DecodeString(ivText)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt verifier iv: %v", common.ErrorInternal, err)
	}
	ct, err := base64.StdEncoding.DecodeString(ctText)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt verifier ciphertext: %v", common.ErrorInternal, err)
	}
	cred.Verifier = cryptox.Verifier{IV: iv, Ciphertext: ct}

	return &cred, nil
}

func (r *RecordStore) PutFile(ctx context.Context, rec *models.FileRecord) error {
	query := `INSERT INTO files
		(id, owner_id, blob_id, body_iv, metadata, metadata_iv, thumb_blob_id, thumb_iv, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			blob_id = EXCLUDED.blob_id,
			body_iv = EXCLUDED.body_iv,
			metadata = EXCLUDED.metadata,
			metadata_iv = EXCLUDED.metadata_iv,
			thumb_blob_id = EXCLUDED.thumb_blob_id,
			thumb_iv = EXCLUDED.thumb_iv`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.BlobID, rec.BodyIV, rec.Metadata, rec.MetadataIV,
		nullString(rec.ThumbBlobID), rec.ThumbIV, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to put file record: %v", common.ErrorBackend, err)
	}
	return nil
}

func (r *RecordStore) GetFile(ctx context.Context, id string) (*models.FileRecord, error) {
	query := `SELECT id, owner_id, blob_id, body_iv, metadata, metadata_iv,
		thumb_blob_id, thumb_iv, created_at
		FROM files WHERE id = $1`

	rec, err := scanFileRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: failed to get file record: %v", common.ErrorBackend, err)
	}
	return rec, nil
}

func (r *RecordStore) ListFiles(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	query := `SELECT id, owner_id, blob_id, body_iv, metadata, metadata_iv,
		thumb_blob_id, thumb_iv, created_at
		FROM files WHERE owner_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
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

func (r *RecordStore) DeleteFile(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
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

func (r *RecordStore) Close() error {
	return r.db.Close()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFileRecord(row rowScanner) (*models.FileRecord, error) {
	var (
		rec     models.FileRecord
		thumbID sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.BlobID, &rec.BodyIV,
		&rec.Metadata, &rec.MetadataIV, &thumbID, &rec.ThumbIV, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.ThumbBlobID = thumbID.String
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
