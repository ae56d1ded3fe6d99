package wazero

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// emptyModule is the minimal valid WebAssembly binary: magic number and
// version, no sections.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

type fakeHostContext struct{}

func (fakeHostContext) AllowsNetwork(string) bool         { return false }
func (fakeHostContext) AllowsStorage(string, string) bool { return false }
func (fakeHostContext) AllowsEnvironment(string) bool     { return false }
func (fakeHostContext) EnvValue(string) (string, bool)    { return "", false }

func TestEngine_CompileAndInstantiateEmptyModule(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx)
	require.NoError(t, err)
	defer engine.Close(ctx)

	mod, err := engine.Compile(ctx, emptyModule)
	require.NoError(t, err)
	defer mod.Close(ctx)

	inst, err := mod.Instantiate(ctx, fakeHostContext{})
	require.NoError(t, err)
	defer inst.Close(ctx)

	assert.Empty(t, inst.ExportedFunctions())
}

func TestEngine_CompileRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx)
	require.NoError(t, err)
	defer engine.Close(ctx)

	_, err = engine.Compile(ctx, []byte("not wasm"))
	require.Error(t, err)
}

func TestEngine_CallUnknownFunctionIsToolNotFound(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx)
	require.NoError(t, err)
	defer engine.Close(ctx)

	mod, err := engine.Compile(ctx, emptyModule)
	require.NoError(t, err)
	defer mod.Close(ctx)

	inst, err := mod.Instantiate(ctx, fakeHostContext{})
	require.NoError(t, err)
	defer inst.Close(ctx)

	_, err = inst.Call(ctx, "missing", nil)
	require.Error(t, err)
	assert.True(t, wassetteerr.Is(err, wassetteerr.CodeToolNotFound), "got %v", err)
}
