package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE kv (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestSQLiteKV_GetMissing(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))
	ctx := context.Background()

	value, ok, err := kv.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestSQLiteKV_SetGetOverwrite(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte("v1")))

	value, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), value)

	// upsert on the same key
	require.NoError(t, kv.Set(ctx, "k", []byte("v2")))

	value, ok, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), value)
}

func TestSQLiteKV_Delete(t *testing.T) {
	kv := NewSQLiteKV(setupDB(t))
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte("v")))
	require.NoError(t, kv.Delete(ctx, "k"))

	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting a missing key is a no-op
	require.NoError(t, kv.Delete(ctx, "k"))
}

func TestOpenDatabase_AppliesMigrations(t *testing.T) {
	ctx := context.Background()

	db, err := OpenDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	kv := NewSQLiteKV(db)
	require.NoError(t, kv.Set(ctx, "k", []byte("v")))

	value, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}
