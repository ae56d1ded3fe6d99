package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStampFile_ChangedDetectsContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "component.wasm")
	require.NoError(t, os.WriteFile(path, []byte("version-1"), 0o644))

	stamp, err := StampFile(path)
	require.NoError(t, err)
	assert.False(t, stamp.Changed(path))

	require.NoError(t, os.WriteFile(path, []byte("version-2-longer"), 0o644))
	assert.True(t, stamp.Changed(path))
}

func TestStampFile_ChangedOnMissingFile(t *testing.T) {
	stamp := Stamp{Size: 10, ModTime: 1}
	assert.True(t, stamp.Changed(filepath.Join(t.TempDir(), "missing.wasm")))
}
