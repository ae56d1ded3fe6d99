// Package wazero adapts github.com/tetratelabs/wazero, a pure-Go
// WebAssembly runtime, to the pkg/runtime.Engine/Module/Instance
// contract: compiling component cores once and instantiating them
// under a per-call or long-lived capability-gated host environment.
package wazero

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	wz "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wassette-go/wassette/pkg/runtime"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Engine wraps a single wazero.Runtime shared by every compiled
// component, so the compilation cache and the host-module
// registration are amortized across loads.
type Engine struct {
	rt          wz.Runtime
	host        api.Module
	instanceSeq atomic.Uint64
}

// NewEngine creates an Engine with a fresh wazero runtime and
// registers the shared capability-gated host module every component
// links its imports against.
func NewEngine(ctx context.Context) (*Engine, error) {
	rt := wz.NewRuntime(ctx)
	host, err := registerHostModule(ctx, rt)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, wassetteerr.Wrap(wassetteerr.CodeInvalidComponent, "failed to register host module", err)
	}
	return &Engine{rt: rt, host: host}, nil
}

// Compile implements runtime.Engine.
func (e *Engine) Compile(ctx context.Context, wasmBytes []byte) (runtime.Module, error) {
	compiled, err := e.rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, wassetteerr.New(wassetteerr.CodeInvalidComponent, "failed to compile component: "+err.Error())
	}
	return &module{engine: e, compiled: compiled}, nil
}

// Close implements runtime.Engine.
func (e *Engine) Close(ctx context.Context) error {
	return e.rt.Close(ctx)
}

type module struct {
	engine   *Engine
	compiled wz.CompiledModule
}

// Instantiate implements runtime.Module. Every call produces an
// independent guest instance (its own linear memory and globals)
// bound to caps for the lifetime of that instance; stateless
// invocation instantiates-invokes-closes per call, stateful
// invocation instantiates once and reuses the instance.
func (m *module) Instantiate(ctx context.Context, caps runtime.HostContext) (runtime.Instance, error) {
	seq := m.engine.instanceSeq.Add(1)
	cfg := wz.NewModuleConfig().WithName(fmt.Sprintf("component-%d", seq))

	mod, err := m.engine.rt.InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodeExecutionTrapped, "failed to instantiate component", err)
	}

	names := make([]string, 0, len(m.compiled.ExportedFunctions()))
	for name := range m.compiled.ExportedFunctions() {
		names = append(names, name)
	}

	return &instance{mod: mod, exported: names, caps: caps}, nil
}

// Close implements runtime.Module.
func (m *module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

type instance struct {
	mod      api.Module
	exported []string
	caps     runtime.HostContext
}

// ExportedFunctions implements runtime.Instance.
func (i *instance) ExportedFunctions() []string {
	return i.exported
}

// Call implements runtime.Instance. The capability context bound at
// instantiation time is attached to ctx so that any host-imported
// function the guest calls transitively during this invocation can
// recover it. A host function that denies an access aborts the guest
// and records the denial on the per-call state; that denial is
// surfaced here as capability_denied, taking precedence over the
// generic trap it unwound with.
func (i *instance) Call(ctx context.Context, name string, args []uint64) ([]uint64, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, wassetteerr.ToolNotFound(name)
	}
	callCtx, st := newCapsContext(ctx, i.caps)
	results, err := fn.Call(callCtx, args...)
	if err != nil {
		if st.denied != nil {
			return nil, st.denied
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, wassetteerr.Cancelled("invocation of " + name)
		}
		return nil, runtime.AsExecutionTrapped(err)
	}
	return results, nil
}

// ReadMemory implements runtime.Instance.
func (i *instance) ReadMemory(ctx context.Context, ptr, length uint32) ([]byte, bool) {
	buf, ok := i.mod.Memory().Read(ptr, length)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, true
}

// WriteMemory implements runtime.Instance.
func (i *instance) WriteMemory(ctx context.Context, ptr uint32, data []byte) bool {
	return i.mod.Memory().Write(ptr, data)
}

// Alloc implements runtime.Instance, calling the guest's conventional
// cabi_realloc(old_ptr, old_size, align, new_size) allocator export
// with a zero old pointer/size to request a fresh allocation.
func (i *instance) Alloc(ctx context.Context, size uint32) (uint32, error) {
	fn := i.mod.ExportedFunction("cabi_realloc")
	if fn == nil {
		return 0, wassetteerr.New(wassetteerr.CodeUnsupportedType, "component exports no cabi_realloc allocator for composite arguments")
	}
	callCtx, st := newCapsContext(ctx, i.caps)
	results, err := fn.Call(callCtx, 0, 0, 8, uint64(size))
	if err != nil {
		if st.denied != nil {
			return 0, st.denied
		}
		return 0, wassetteerr.Wrap(wassetteerr.CodeExecutionTrapped, "component trapped during allocation", err)
	}
	if len(results) == 0 {
		return 0, wassetteerr.New(wassetteerr.CodeUnsupportedType, "cabi_realloc returned no pointer")
	}
	return uint32(results[0]), nil
}

// Close implements runtime.Instance.
func (i *instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}
