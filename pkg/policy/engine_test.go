package policy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewEngine(store)
}

func TestEngine_GetReturnsEmptyDocumentForUnknownComponent(t *testing.T) {
	e := newTestEngine(t)
	doc, err := e.Get("comp-a")
	require.NoError(t, err)
	assert.Equal(t, Version, doc.Version)
}

func TestEngine_GrantPersistsAndIsVisible(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.GrantNetwork("comp-a", "api.example.com"))

	doc, err := e.Get("comp-a")
	require.NoError(t, err)
	require.NotNil(t, doc.Permissions.Network)
	assert.Equal(t, "api.example.com", doc.Permissions.Network.Allow[0].Host)
}

func TestEngine_GetReturnsSnapshotNotLiveReference(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.GrantNetwork("comp-a", "api.example.com"))

	snapshot, err := e.Get("comp-a")
	require.NoError(t, err)

	require.NoError(t, e.GrantNetwork("comp-a", "other.example.com"))

	assert.Len(t, snapshot.Permissions.Network.Allow, 1)
}

func TestEngine_Capabilities(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.GrantStorage("comp-a", "fs:///data/**", []string{"read"}))

	caps, err := e.Capabilities("comp-a")
	require.NoError(t, err)
	assert.True(t, caps.AllowsStorage("fs:///data/file.txt", string(AccessRead)))
	assert.False(t, caps.AllowsStorage("fs:///data/file.txt", string(AccessWrite)))
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.GrantNetwork("comp-a", "x.com"))
	require.NoError(t, e.Reset("comp-a"))

	doc, err := e.Get("comp-a")
	require.NoError(t, err)
	assert.Nil(t, doc.Permissions.Network)
}

func TestEngine_Forget(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.GrantNetwork("comp-a", "x.com"))
	require.NoError(t, e.Forget("comp-a"))

	doc, err := e.Get("comp-a")
	require.NoError(t, err)
	assert.Equal(t, Version, doc.Version)
	assert.Nil(t, doc.Permissions.Network)
}

func TestEngine_ConcurrentGrantsOnDistinctComponentsDontBlock(t *testing.T) {
	e := newTestEngine(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "comp-" + string(rune('a'+i%5))
			_ = e.GrantNetwork(id, "x.com")
		}(i)
	}
	wg.Wait()
}
