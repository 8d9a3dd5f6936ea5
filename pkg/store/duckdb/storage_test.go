package duckdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootsSchema(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO datasets (id, name) VALUES (?, ?)`,
		"ds-001", "weekly",
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM datasets WHERE name = ?", "weekly").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInTransaction(t *testing.T) {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	count := func() int {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM datasets").Scan(&n))
		return n
	}

	t.Run("commit", func(t *testing.T) {
		err := InTransaction(ctx, db, func(ctx context.Context) error {
			require.NotNil(t, GetTransaction(ctx))
			_, err := Conn(ctx, db).ExecContext(ctx, `INSERT INTO datasets (id, name) VALUES ('a', 'a')`)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := InTransaction(ctx, db, func(ctx context.Context) error {
			_, err := Conn(ctx, db).ExecContext(ctx, `INSERT INTO datasets (id, name) VALUES ('b', 'b')`)
			require.NoError(t, err)
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})
}
