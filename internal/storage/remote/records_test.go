package remote

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/cryptox"
	"github.com/dmitrijs2005/filevault/internal/models"
)

func newRecordStoreWithMock(t *testing.T) (*RecordStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return &RecordStore{db: db}, mock, db
}

func b64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func TestPutCredential_Success(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+credentials\b.*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+NOTHING$`

	mock.ExpectExec(q).
		WithArgs("alice", []byte("salt-16-bytes-xx"), b64([]byte("iv")), b64([]byte("ct")), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.PutCredential(context.Background(), &models.Credential{
		UserID:    "alice",
		Salt:      []byte("salt-16-bytes-xx"),
		Verifier:  cryptox.Verifier{IV: []byte("iv"), Ciphertext: []byte("ct")},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPutCredential_Duplicate(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+credentials\b`

	mock.ExpectExec(q).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.PutCredential(context.Background(), &models.Credential{
		UserID:    "alice",
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestPutCredential_DBError(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+credentials\b`).
		WillReturnError(errors.New("db down"))

	err := store.PutCredential(context.Background(), &models.Credential{
		UserID:    "alice",
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, common.ErrorBackend) {
		t.Fatalf("want ErrorBackend, got %v", err)
	}
}

func TestGetCredential_Success(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"user_id", "salt", "verifier_iv", "verifier_ct", "created_at"}).
		AddRow("alice", []byte("salt"), b64([]byte("iv-bytes")), b64([]byte("ct-bytes")), created)

	mock.ExpectQuery(`(?s)^SELECT\s+user_id,\s*salt,\s*verifier_iv,\s*verifier_ct,\s*created_at\s+FROM\s+credentials\b`).
		WithArgs("alice").
		WillReturnRows(rows)

	cred, err := store.GetCredential(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.UserID != "alice" {
		t.Fatalf("user id = %q", cred.UserID)
	}
	if string(cred.Verifier.IV) != "iv-bytes" || string(cred.Verifier.Ciphertext) != "ct-bytes" {
		t.Fatalf("verifier not decoded: %+v", cred.Verifier)
	}
	if !cred.CreatedAt.Equal(created) {
		t.Fatalf("created at = %v, want %v", cred.CreatedAt, created)
	}
}

func TestGetCredential_NotFound(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\b.*FROM\s+credentials\b`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetCredential(context.Background(), "nobody")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetCredential_CorruptVerifier(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id", "salt", "verifier_iv", "verifier_ct", "created_at"}).
		AddRow("alice", []byte("salt"), "%%% not base64", b64([]byte("ct")), time.Now())

	mock.ExpectQuery(`(?s)^SELECT\b.*FROM\s+credentials\b`).
		WithArgs("alice").
		WillReturnRows(rows)

	_, err := store.GetCredential(context.Background(), "alice")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

func TestPutFile_Success(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+files\b.*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET\b`

	mock.ExpectExec(q).
		WithArgs("f1", "alice", "blob-1", []byte("biv"), "bWV0YQ==", []byte("miv"),
			nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.PutFile(context.Background(), &models.FileRecord{
		ID:         "f1",
		OwnerID:    "alice",
		BlobID:     "blob-1",
		BodyIV:     []byte("biv"),
		Metadata:   "bWV0YQ==",
		MetadataIV: []byte("miv"),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPutFile_WithThumbnail(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+files\b`).
		WithArgs("f1", "alice", "blob-1", []byte("biv"), "bWV0YQ==", []byte("miv"),
			"thumb-1", []byte("tiv"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.PutFile(context.Background(), &models.FileRecord{
		ID:          "f1",
		OwnerID:     "alice",
		BlobID:      "blob-1",
		BodyIV:      []byte("biv"),
		Metadata:    "bWV0YQ==",
		MetadataIV:  []byte("miv"),
		ThumbBlobID: "thumb-1",
		ThumbIV:     []byte("tiv"),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetFile_Success(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "blob_id", "body_iv", "metadata",
		"metadata_iv", "thumb_blob_id", "thumb_iv", "created_at"}).
		AddRow("f1", "alice", "blob-1", []byte("biv"), "bWV0YQ==", []byte("miv"), nil, nil, created)

	mock.ExpectQuery(`(?s)^SELECT\b.*FROM\s+files\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("f1").
		WillReturnRows(rows)

	rec, err := store.GetFile(context.Background(), "f1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "f1" || rec.BlobID != "blob-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.HasThumbnail() {
		t.Fatalf("expected no thumbnail, got %q", rec.ThumbBlobID)
	}
}

func TestGetFile_NotFound(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\b.*FROM\s+files\b`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetFile(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestListFiles_Success(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "blob_id", "body_iv", "metadata",
		"metadata_iv", "thumb_blob_id", "thumb_iv", "created_at"}).
		AddRow("f1", "alice", "blob-1", []byte("iv1"), "bTE=", []byte("m1"), nil, nil, created).
		AddRow("f2", "alice", "blob-2", []byte("iv2"), "bTI=", []byte("m2"), "thumb-2", []byte("t2"), created.Add(time.Hour))

	mock.ExpectQuery(`(?s)^SELECT\b.*FROM\s+files\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id$`).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := store.ListFiles(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "f1" || got[1].ID != "f2" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if !got[1].HasThumbnail() {
		t.Fatalf("second record should have a thumbnail")
	}
}

func TestDeleteFile_Success(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+files\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("f1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.DeleteFile(context.Background(), "f1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteFile_NotFound(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+files\b`).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteFile(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDeleteFile_DBError(t *testing.T) {
	store, mock, db := newRecordStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+files\b`).
		WithArgs("f1").
		WillReturnError(errors.New("db down"))

	err := store.DeleteFile(context.Background(), "f1")
	if !errors.Is(err, common.ErrorBackend) {
		t.Fatalf("want ErrorBackend, got %v", err)
	}
}
