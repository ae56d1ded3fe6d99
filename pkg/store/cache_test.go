package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ResolveFile(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "echo.wasm")
	require.NoError(t, os.WriteFile(srcPath, []byte("fake wasm bytes"), 0o644))

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	rec, err := cache.Resolve(context.Background(), "file://"+srcPath)
	require.NoError(t, err)
	assert.Equal(t, "echo", rec.ComponentID)

	data, err := os.ReadFile(rec.BinaryPath)
	require.NoError(t, err)
	assert.Equal(t, "fake wasm bytes", string(data))
	assert.NotZero(t, rec.Stamp.Size)
}

func TestCache_ResolveFile_RejectsUnsupportedScheme(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	_, err = cache.Resolve(context.Background(), "https://example.com/echo.wasm")
	require.Error(t, err)
}

func TestCache_BinaryAndPolicyPaths(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cache.dir, "echo.wasm"), cache.BinaryPath("echo"))
	assert.Equal(t, filepath.Join(cache.dir, "echo.policy.yaml"), cache.PolicyPath("echo"))
}
