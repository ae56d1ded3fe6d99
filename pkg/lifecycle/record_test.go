package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassette-go/wassette/pkg/runtime"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// fakeModule/fakeInstance stand in for a compiled component so record.go's
// stateless-vs-stateful dispatch can be exercised without a real wasm
// binary.
type fakeModule struct {
	instantiateCount int
	closed           bool
	callErr          error
}

func (m *fakeModule) Instantiate(ctx context.Context, caps runtime.HostContext) (runtime.Instance, error) {
	m.instantiateCount++
	return &fakeInstance{id: m.instantiateCount, callErr: m.callErr}, nil
}

func (m *fakeModule) Close(ctx context.Context) error {
	m.closed = true
	return nil
}

type fakeInstance struct {
	id      int
	closed  bool
	callErr error
}

func (i *fakeInstance) ExportedFunctions() []string { return []string{"double"} }

func (i *fakeInstance) Call(ctx context.Context, name string, args []uint64) ([]uint64, error) {
	if i.callErr != nil {
		return nil, i.callErr
	}
	return []uint64{args[0] * 2}, nil
}

func (i *fakeInstance) ReadMemory(ctx context.Context, ptr, length uint32) ([]byte, bool) {
	return nil, false
}

func (i *fakeInstance) WriteMemory(ctx context.Context, ptr uint32, data []byte) bool { return true }

func (i *fakeInstance) Alloc(ctx context.Context, size uint32) (uint32, error) { return 0, nil }

func (i *fakeInstance) Close(ctx context.Context) error {
	i.closed = true
	return nil
}

func passThroughPack(mod runtime.Instance) ([]uint64, error) {
	return []uint64{21}, nil
}

func passThroughUnpack(mod runtime.Instance, results []uint64) (interface{}, error) {
	return results[0], nil
}

func TestComponentRecord_Invoke_StatelessInstantiatesPerCall(t *testing.T) {
	mod := &fakeModule{}
	rec := &ComponentRecord{ComponentID: "double-it", Mode: Stateless, module: mod}

	out, err := rec.Invoke(context.Background(), nil, "double", passThroughPack, passThroughUnpack)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), out)

	out, err = rec.Invoke(context.Background(), nil, "double", passThroughPack, passThroughUnpack)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), out)

	assert.Equal(t, 2, mod.instantiateCount, "stateless invocation should instantiate fresh each call")
}

func TestComponentRecord_Invoke_StatefulReusesInstance(t *testing.T) {
	mod := &fakeModule{}
	rec := &ComponentRecord{ComponentID: "counter", Mode: Stateful, module: mod}

	_, err := rec.Invoke(context.Background(), nil, "double", passThroughPack, passThroughUnpack)
	require.NoError(t, err)
	_, err = rec.Invoke(context.Background(), nil, "double", passThroughPack, passThroughUnpack)
	require.NoError(t, err)

	assert.Equal(t, 1, mod.instantiateCount, "stateful invocation should reuse the same instance")
}

func TestComponentRecord_Invoke_StatefulPoisonsInstanceOnTrap(t *testing.T) {
	mod := &fakeModule{callErr: runtime.AsExecutionTrapped(errors.New("unreachable"))}
	rec := &ComponentRecord{ComponentID: "flaky", Mode: Stateful, module: mod}

	_, err := rec.Invoke(context.Background(), nil, "double", passThroughPack, passThroughUnpack)
	require.Error(t, err)
	assert.Nil(t, rec.statefulInstance, "a trapped stateful instance must be discarded, not reused")

	mod.callErr = nil
	_, err = rec.Invoke(context.Background(), nil, "double", passThroughPack, passThroughUnpack)
	require.NoError(t, err)
	assert.Equal(t, 2, mod.instantiateCount, "recovery from a trap must re-instantiate")
}

func TestComponentRecord_Invoke_StatefulKeepsInstanceOnCodecError(t *testing.T) {
	mod := &fakeModule{}
	rec := &ComponentRecord{ComponentID: "counter", Mode: Stateful, module: mod}

	_, err := rec.Invoke(context.Background(), nil, "double", passThroughPack, passThroughUnpack)
	require.NoError(t, err)

	failingUnpack := func(runtime.Instance, []uint64) (interface{}, error) {
		return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "unexpected result shape")
	}
	_, err = rec.Invoke(context.Background(), nil, "double", passThroughPack, failingUnpack)
	require.Error(t, err)
	assert.NotNil(t, rec.statefulInstance, "a codec failure never touched the guest; its state must survive")

	_, err = rec.Invoke(context.Background(), nil, "double", passThroughPack, passThroughUnpack)
	require.NoError(t, err)
	assert.Equal(t, 1, mod.instantiateCount, "no re-instantiation after a host-side codec failure")
}

func TestComponentRecord_ToolNames(t *testing.T) {
	rec := &ComponentRecord{}
	assert.Empty(t, rec.ToolNames())
}

func TestComponentRecord_CloseStatefulInstanceIsIdempotent(t *testing.T) {
	mod := &fakeModule{}
	rec := &ComponentRecord{ComponentID: "counter", Mode: Stateful, module: mod}

	_, err := rec.Invoke(context.Background(), nil, "double", passThroughPack, passThroughUnpack)
	require.NoError(t, err)

	rec.closeStatefulInstance(context.Background())
	assert.Nil(t, rec.statefulInstance)
	rec.closeStatefulInstance(context.Background())
	assert.Nil(t, rec.statefulInstance)
}
