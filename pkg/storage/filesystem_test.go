package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveReadRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("ab12cd34_pasfoto.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "ab12cd34_pasfoto.jpg", name)
	assert.True(t, store.Exists(name))

	data, err := store.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestLocalStorageDeleteToleratesMissingFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("ab12cd34_vonnis.pdf", []byte("%PDF"))
	require.NoError(t, err)

	require.NoError(t, store.Delete("ab12cd34_vonnis.pdf"))
	assert.False(t, store.Exists("ab12cd34_vonnis.pdf"))

	// Deleting again is not an error.
	require.NoError(t, store.Delete("ab12cd34_vonnis.pdf"))
	require.NoError(t, store.Delete("nooit-bestaan.pdf"))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("oud_pasfoto.jpg", []byte("x"))
	require.NoError(t, err)
	_, err = store.Save("vers_pasfoto.jpg", []byte("y"))
	require.NoError(t, err)

	stale := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "oud_pasfoto.jpg"), stale, stale))

	deleted, err := store.CleanupOlderThan(2 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"oud_pasfoto.jpg"}, deleted)
	assert.False(t, store.Exists("oud_pasfoto.jpg"))
	assert.True(t, store.Exists("vers_pasfoto.jpg"))
}
