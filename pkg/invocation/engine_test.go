package invocation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassette-go/wassette/pkg/runtime"
	"github.com/wassette-go/wassette/pkg/typebridge"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// fakeMemory is a bump-allocated byte arena standing in for a guest's
// linear memory, shared by fakeInstance's Alloc/ReadMemory/WriteMemory.
type fakeMemory struct {
	buf []byte
}

func (m *fakeMemory) alloc(size uint32) uint32 {
	ptr := uint32(len(m.buf))
	m.buf = append(m.buf, make([]byte, size)...)
	return ptr
}

func (m *fakeMemory) write(ptr uint32, data []byte) bool {
	if int(ptr)+len(data) > len(m.buf) {
		return false
	}
	copy(m.buf[ptr:], data)
	return true
}

func (m *fakeMemory) read(ptr, length uint32) ([]byte, bool) {
	if int(ptr)+int(length) > len(m.buf) {
		return nil, false
	}
	out := make([]byte, length)
	copy(out, m.buf[ptr:ptr+length])
	return out, true
}

// fakeInstance backs the JSON-buffer calling convention tests: Call
// echoes whatever args buffer it received straight back as the result
// buffer, which exercises pack/unpack symmetrically without needing a
// real component binary.
type fakeInstance struct {
	mem *fakeMemory
}

func newFakeInstance() *fakeInstance { return &fakeInstance{mem: &fakeMemory{}} }

func (i *fakeInstance) ExportedFunctions() []string { return []string{"echo"} }

func (i *fakeInstance) Call(ctx context.Context, name string, args []uint64) ([]uint64, error) {
	return args, nil // echo: args buffer is the result buffer
}

func (i *fakeInstance) ReadMemory(ctx context.Context, ptr, length uint32) ([]byte, bool) {
	return i.mem.read(ptr, length)
}

func (i *fakeInstance) WriteMemory(ctx context.Context, ptr uint32, data []byte) bool {
	return i.mem.write(ptr, data)
}

func (i *fakeInstance) Alloc(ctx context.Context, size uint32) (uint32, error) {
	return i.mem.alloc(size), nil
}

func (i *fakeInstance) Close(ctx context.Context) error { return nil }

// fakeRecord runs pack/unpack against a single shared fakeInstance,
// standing in for lifecycle.ComponentRecord.Invoke's stateless path.
type fakeRecord struct {
	inst            *fakeInstance
	rawCallResults  []uint64
	rawCallOverride bool
}

func (r *fakeRecord) Invoke(
	ctx context.Context,
	caps runtime.HostContext,
	rawFunctionName string,
	pack func(runtime.Instance) ([]uint64, error),
	unpack func(runtime.Instance, []uint64) (interface{}, error),
) (interface{}, error) {
	args, err := pack(r.inst)
	if err != nil {
		return nil, err
	}
	var results []uint64
	if r.rawCallOverride {
		results = r.rawCallResults
	} else {
		results, err = r.inst.Call(ctx, rawFunctionName, args)
		if err != nil {
			return nil, err
		}
	}
	return unpack(r.inst, results)
}

func TestCall_RawPassthroughDoublesValue(t *testing.T) {
	sig := typebridge.Signature{
		ID:      typebridge.FunctionID{FunctionName: "double"},
		Params:  []typebridge.Param{{Name: "value", Type: &typebridge.Type{Kind: typebridge.KindS64}}},
		Results: []*typebridge.Type{{Kind: typebridge.KindS64}},
		Raw:     true,
	}
	rec := &fakeRecord{inst: newFakeInstance(), rawCallOverride: true, rawCallResults: []uint64{42}}

	out, err := Call(context.Background(), rec, nil, sig, "double", map[string]interface{}{"value": float64(21)})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"result": float64(42)}, out)
}

func TestCall_JSONBufferEchoesString(t *testing.T) {
	sig := typebridge.Signature{
		ID:      typebridge.FunctionID{FunctionName: "echo"},
		Params:  []typebridge.Param{{Name: "s", Type: &typebridge.Type{Kind: typebridge.KindString}}},
		Results: []*typebridge.Type{{Kind: typebridge.KindString}},
	}
	rec := &echoFakeRecord{inst: newFakeInstance()}

	out, err := Call(context.Background(), rec, nil, sig, "echo", map[string]interface{}{"s": "hello"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"result": "hello"}, out)
}

// echoFakeRecord reads the "s" field out of the args buffer pack wrote
// and writes it back as the bare single-result JSON value, the shape
// jsonUnpack expects for a one-return function (as opposed to the
// {"val0": ...} field wrapping used for multiple returns).
type echoFakeRecord struct {
	inst *fakeInstance
}

func (r *echoFakeRecord) Invoke(
	ctx context.Context,
	caps runtime.HostContext,
	rawFunctionName string,
	pack func(runtime.Instance) ([]uint64, error),
	unpack func(runtime.Instance, []uint64) (interface{}, error),
) (interface{}, error) {
	args, err := pack(r.inst)
	if err != nil {
		return nil, err
	}
	argData, ok := r.inst.ReadMemory(ctx, uint32(args[0]), uint32(args[1]))
	if !ok {
		return nil, errors.New("failed to read args buffer")
	}
	var decodedArgs map[string]interface{}
	if err := json.Unmarshal(argData, &decodedArgs); err != nil {
		return nil, err
	}
	resultBytes, _ := json.Marshal(decodedArgs["s"])
	ptr, _ := r.inst.Alloc(ctx, uint32(len(resultBytes)))
	r.inst.WriteMemory(ctx, ptr, resultBytes)
	return unpack(r.inst, []uint64{uint64(ptr), uint64(len(resultBytes))})
}

func TestCall_MultiReturnTupleWraps(t *testing.T) {
	sig := typebridge.Signature{
		ID:     typebridge.FunctionID{FunctionName: "split"},
		Params: []typebridge.Param{{Name: "s", Type: &typebridge.Type{Kind: typebridge.KindString}}},
		Results: []*typebridge.Type{
			{Kind: typebridge.KindString},
			{Kind: typebridge.KindString},
		},
	}

	// This fake instance's Call doesn't actually split the string (no
	// real component runs here); it exercises the multi-result
	// val0/val1 wrapping shape by returning a synthetic buffer.
	inst := newFakeInstance()
	rec := &splitFakeRecord{inst: inst}

	out, err := Call(context.Background(), rec, nil, sig, "split", map[string]interface{}{"s": "a,b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"result": map[string]interface{}{"val0": "a", "val1": "b"}}, out)
}

type splitFakeRecord struct {
	inst *fakeInstance
}

func (r *splitFakeRecord) Invoke(
	ctx context.Context,
	caps runtime.HostContext,
	rawFunctionName string,
	pack func(runtime.Instance) ([]uint64, error),
	unpack func(runtime.Instance, []uint64) (interface{}, error),
) (interface{}, error) {
	if _, err := pack(r.inst); err != nil {
		return nil, err
	}
	resultBytes, _ := json.Marshal(map[string]string{"val0": "a", "val1": "b"})
	ptr, _ := r.inst.Alloc(ctx, uint32(len(resultBytes)))
	r.inst.WriteMemory(ctx, ptr, resultBytes)
	return unpack(r.inst, []uint64{uint64(ptr), uint64(len(resultBytes))})
}

func TestCall_DecodeFailurePropagatesAsDecodingFailed(t *testing.T) {
	sig := typebridge.Signature{
		Params: []typebridge.Param{{Name: "n", Type: &typebridge.Type{Kind: typebridge.KindS32}}},
	}
	rec := &fakeRecord{inst: newFakeInstance()}

	_, err := Call(context.Background(), rec, nil, sig, "f", map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, wassetteerr.Is(err, wassetteerr.CodeDecodingFailed), "got %v", err)
}

func TestCall_ZeroReturnFunctionYieldsEmptyObject(t *testing.T) {
	sig := typebridge.Signature{ID: typebridge.FunctionID{FunctionName: "noop"}}
	rec := &fakeRecord{inst: newFakeInstance(), rawCallOverride: true, rawCallResults: nil}

	out, err := Call(context.Background(), rec, nil, sig, "noop", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, out)
}
