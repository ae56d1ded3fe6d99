package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretStore_SetGetDelete(t *testing.T) {
	store, err := NewSecretStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get("comp-a", "API_KEY")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("comp-a", "API_KEY", "secret-value"))
	v, ok, err := store.Get("comp-a", "API_KEY")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret-value", v)

	require.NoError(t, store.Delete("comp-a", "API_KEY"))
	_, ok, err = store.Get("comp-a", "API_KEY")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSecretStore_Keys(t *testing.T) {
	store, err := NewSecretStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("comp-a", "A", "1"))
	require.NoError(t, store.Set("comp-a", "B", "2"))

	keys, err := store.Keys("comp-a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, keys)
}

func TestSecretStore_IsolatedPerComponent(t *testing.T) {
	store, err := NewSecretStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("comp-a", "K", "a-value"))
	_, ok, err := store.Get("comp-b", "K")
	require.NoError(t, err)
	assert.False(t, ok)
}
