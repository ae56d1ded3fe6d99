package policy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissingReturnsEmptyDocument(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	doc, err := store.Load("does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, Version, doc.Version)
	assert.Nil(t, doc.Permissions.Storage)
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	doc := NewDocument()
	doc.GrantNetwork("api.example.com")
	require.NoError(t, store.Save("comp-a", doc))

	loaded, err := store.Load("comp-a")
	require.NoError(t, err)
	assert.Equal(t, doc.Permissions.Network.Allow, loaded.Permissions.Network.Allow)
}

func TestFileStore_SaveIsAtomic_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("comp-a", NewDocument()))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStore_Delete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("comp-a", NewDocument()))
	require.NoError(t, store.Delete("comp-a"))
	require.NoError(t, store.Delete("comp-a")) // idempotent

	doc, err := store.Load("comp-a")
	require.NoError(t, err)
	assert.Equal(t, Version, doc.Version)
}
