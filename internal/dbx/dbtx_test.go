package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	// shared in-memory database, named after the test, so the verifying
	// connection and the transaction connection see the same data
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE blobs (id TEXT PRIMARY KEY, data BLOB)`)
	require.NoError(t, err)
	return db
}

func blobCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM blobs`).Scan(&n))
	return n
}

func insertBlob(ctx context.Context, tx DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO blobs (id, data) VALUES (?, ?)`, id, []byte("x"))
	return err
}

func TestWithTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		if err := insertBlob(ctx, tx, "a"); err != nil {
			return err
		}
		return insertBlob(ctx, tx, "b")
	})
	require.NoError(t, err)
	require.Equal(t, 2, blobCount(t, db))
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := openTestDB(t)

	boom := errors.New("boom")
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertBlob(ctx, tx, "a"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, blobCount(t, db), "insert must be rolled back")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := openTestDB(t)

	require.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insertBlob(ctx, tx, "a"))
			panic("kaput")
		})
	})
	require.Equal(t, 0, blobCount(t, db), "insert must be rolled back")
}

func TestWithTx_BeginFails(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called, "fn must not run when Begin fails")
}
