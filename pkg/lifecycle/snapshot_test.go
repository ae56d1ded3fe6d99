package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassette-go/wassette/pkg/policy"
	"github.com/wassette-go/wassette/pkg/runtime/wazero"
	"github.com/wassette-go/wassette/pkg/store"
)

func TestSnapshot_ExportCapturesLoadedComponentsAndPolicy(t *testing.T) {
	m, dir := newTestManager(t)
	ctx := context.Background()

	sourceURI := writeComponentFile(t, dir, "exported.wasm", emptyModule)
	result, err := m.Load(ctx, sourceURI, "", Stateful)
	require.NoError(t, err)

	require.NoError(t, m.policy.GrantNetwork(result.ComponentID, "example.com"))
	require.NoError(t, m.policy.GrantStorage(result.ComponentID, "fs:///data/**", []string{"read"}))

	snap, err := m.Export()
	require.NoError(t, err)
	require.Len(t, snap.Components, 1)

	entry := snap.Components[0]
	assert.Equal(t, result.ComponentID, entry.ComponentID)
	assert.Equal(t, sourceURI, entry.SourceURI)
	assert.Equal(t, Stateful, entry.Mode)
	require.NotNil(t, entry.Policy.Permissions.Network)
	assert.Equal(t, "example.com", entry.Policy.Permissions.Network.Allow[0].Host)
	require.NotNil(t, entry.Policy.Permissions.Storage)
	assert.Equal(t, "fs:///data/**", entry.Policy.Permissions.Storage.Allow[0].URI)
}

func TestSnapshot_WriteAndReadFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	snap := &Snapshot{
		Version: snapshotVersion,
		Components: []SnapshotEntry{
			{ComponentID: "fetch-url", SourceURI: "oci://ghcr.io/acme/fetch-url:v1", Mode: Stateless, Policy: policy.NewDocument()},
		},
	}

	require.NoError(t, WriteSnapshotFile(path, snap))

	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr), "temp file should not remain after write")

	loaded, err := ReadSnapshotFile(path)
	require.NoError(t, err)
	require.Len(t, loaded.Components, 1)
	assert.Equal(t, "fetch-url", loaded.Components[0].ComponentID)
	assert.Equal(t, "oci://ghcr.io/acme/fetch-url:v1", loaded.Components[0].SourceURI)
}

func TestSnapshot_ImportReloadsComponentsAndRestoresPolicy(t *testing.T) {
	source, dir := newTestManager(t)
	ctx := context.Background()

	sourceURI := writeComponentFile(t, dir, "roundtrip.wasm", emptyModule)
	result, err := source.Load(ctx, sourceURI, "", Stateless)
	require.NoError(t, err)
	require.NoError(t, source.policy.GrantEnvironment(result.ComponentID, "API_KEY"))

	snap, err := source.Export()
	require.NoError(t, err)

	target, _ := newTargetManager(t, dir)
	errs := target.Import(ctx, snap)
	assert.Empty(t, errs)

	doc, err := target.GetPolicy(result.ComponentID)
	require.NoError(t, err)
	require.NotNil(t, doc.Permissions.Environment)
	assert.Equal(t, "API_KEY", doc.Permissions.Environment.Allow[0].Key)

	infos := target.List()
	require.Len(t, infos, 1)
	assert.Equal(t, result.ComponentID, infos[0].ComponentID)
}

// newTargetManager builds a second Manager sharing the same component
// source directory (so Import can re-resolve file:// URIs) but its
// own cache/policy storage, standing in for a different host.
func newTargetManager(t *testing.T, sharedSourceDir string) (*Manager, string) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	cache, err := store.NewCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	fileStore, err := policy.NewFileStore(filepath.Join(dir, "policy"))
	require.NoError(t, err)
	policyEngine := policy.NewEngine(fileStore)
	engine, err := wazero.NewEngine(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close(ctx) })

	return NewManager(cache, policyEngine, engine, nil), sharedSourceDir
}
