// ABOUTME: Tests for the storage backends
// ABOUTME: Runs the same key/value contract against file, SQLite and memory storage

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	fileStore, err := NewFileStorage(filepath.Join(t.TempDir(), "cfg"))
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)

	all := map[string]Storage{
		"file":   fileStore,
		"sqlite": sqliteStore,
		"memory": NewMemoryStorage(),
	}
	t.Cleanup(func() {
		for _, s := range all {
			s.Close()
		}
	})
	return all
}

func TestStorage_Contract(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := st.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok, "fresh storage should be empty")

			require.NoError(t, st.Set(ctx, KeyToken, "abc"))
			v, ok, err := st.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", v)

			require.NoError(t, st.Set(ctx, KeyToken, "def"))
			v, _, err = st.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.Equal(t, "def", v)

			require.NoError(t, st.Remove(ctx, KeyToken))
			_, ok, err = st.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)

			// Removing twice is fine
			require.NoError(t, st.Remove(ctx, KeyToken))
		})
	}
}

func TestStorage_InvalidKey(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := st.Set(context.Background(), "../escape", "x")
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyToken, "persisted"))
	require.NoError(t, first.Close())

	second, err := NewFileStorage(dir)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)

	info, err := os.Stat(filepath.Join(dir, KeyToken))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStorage_TrimsHandEditedValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyToken), []byte("  tok-123 \n\n"), 0600))

	st, err := NewFileStorage(dir)
	require.NoError(t, err)
	v, ok, err := st.Get(context.Background(), KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", v)
}

func TestSQLiteStorage_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	first, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyToken, "from-db"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-db", v)
}

func TestStorage_ClosedOperationsFail(t *testing.T) {
	ctx := context.Background()

	mem := NewMemoryStorage()
	require.NoError(t, mem.Close())
	assert.ErrorIs(t, mem.Set(ctx, KeyToken, "x"), ErrClosed)

	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, fs.Close())
	_, _, err = fs.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrClosed)

	db, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.ErrorIs(t, db.Set(ctx, KeyToken, "x"), ErrClosed)
}

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()

	st, err := Open(DriverSQLite, dir)
	require.NoError(t, err)
	defer st.Close()
	_, err = os.Stat(filepath.Join(dir, "docreview.db"))
	assert.NoError(t, err, "sqlite driver should place the database inside a bare directory")

	mem, err := Open(DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, mem)

	_, err = Open("redis", dir)
	assert.Error(t, err)
}
