package lifecycle

import (
	"context"
	"sync"

	"github.com/wassette-go/wassette/pkg/runtime"
	"github.com/wassette-go/wassette/pkg/store"
	"github.com/wassette-go/wassette/pkg/typebridge"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Mode is a component's invocation isolation mode, declared at load
// time.
type Mode string

const (
	// Stateless instantiates a fresh store per invocation and
	// discards it afterward; invocations proceed in parallel.
	Stateless Mode = "stateless"

	// Stateful keeps one long-lived instance across invocations,
	// serialized by the record's invocation mutex.
	Stateful Mode = "stateful"
)

// ComponentRecord is everything the lifecycle manager tracks for one
// loaded component. Created on load, replaced atomically on reload,
// destroyed on unload.
type ComponentRecord struct {
	ComponentID string
	SourceURI   string
	Mode        Mode

	rec *store.Record

	module runtime.Module

	Signatures  []typebridge.Signature
	Descriptors []typebridge.Descriptor

	// invocationMu serializes stateful invocations against this
	// component; stateless invocations never take it.
	invocationMu sync.Mutex

	// statefulInstance is lazily created on first stateful call and
	// reused afterward; nil for stateless components and before the
	// first call.
	statefulInstance runtime.Instance
}

// Stamp returns the validation stamp taken when the record's binary
// was resolved. The manager does not re-check it before invocations.
func (r *ComponentRecord) Stamp() store.Stamp {
	return r.rec.Stamp
}

// BinaryPath returns the cached component binary path.
func (r *ComponentRecord) BinaryPath() string {
	return r.rec.BinaryPath
}

// Signature returns the full parameter/result signature backing id,
// as recorded at load time, so the invocation engine can decode
// arguments and encode results without re-introspecting the component.
func (r *ComponentRecord) Signature(id typebridge.FunctionID) (typebridge.Signature, bool) {
	for _, sig := range r.Signatures {
		if sig.ID == id {
			return sig, true
		}
	}
	return typebridge.Signature{}, false
}

// ToolNames returns the tool names this record currently registers.
func (r *ComponentRecord) ToolNames() []string {
	names := make([]string, 0, len(r.Descriptors))
	for _, d := range r.Descriptors {
		names = append(names, d.ToolName)
	}
	return names
}

// closeStatefulInstance tears down a long-lived stateful instance, if
// one exists, discarding its in-component state. Called on unload and
// on reload (pre-existing stateful state is always dropped on
// reload).
func (r *ComponentRecord) closeStatefulInstance(ctx context.Context) {
	if r.statefulInstance != nil {
		_ = r.statefulInstance.Close(ctx)
		r.statefulInstance = nil
	}
}

// Invoke executes rawFunctionName under the isolation semantics this
// record's Mode declares. pack receives the live instance (so it can
// write composite arguments into guest memory via its allocator
// before the call) and returns the core-wasm args; unpack receives
// the same instance and the call's raw results (so it can read
// composite results back out of guest memory) and returns the
// invocation's final value.
//
// Stateless instantiates a fresh instance per call and discards it
// once unpack has run. Stateful acquires the record's invocation
// mutex, lazily creates (or re-creates, after a prior trap poisoned
// it) a long-lived instance, and reuses it across calls.
func (r *ComponentRecord) Invoke(
	ctx context.Context,
	caps runtime.HostContext,
	rawFunctionName string,
	pack func(runtime.Instance) ([]uint64, error),
	unpack func(runtime.Instance, []uint64) (interface{}, error),
) (interface{}, error) {
	if r.Mode == Stateless {
		inst, err := r.module.Instantiate(ctx, caps)
		if err != nil {
			return nil, err
		}
		defer inst.Close(ctx)
		return callAndUnpack(ctx, inst, rawFunctionName, pack, unpack)
	}

	r.invocationMu.Lock()
	defer r.invocationMu.Unlock()

	if r.statefulInstance == nil {
		inst, err := r.module.Instantiate(ctx, caps)
		if err != nil {
			return nil, err
		}
		r.statefulInstance = inst
	}

	out, err := callAndUnpack(ctx, r.statefulInstance, rawFunctionName, pack, unpack)
	if err != nil {
		// A trapped stateful instance may be left in a corrupt state;
		// poison it so the next call re-instantiates from scratch
		// rather than silently retaining possibly-corrupt memory.
		// Only a genuine guest trap poisons the instance: pack/unpack
		// failures (decoding_failed, encoding_failed) are host-side,
		// and a denied capability (raised from a host import while the
		// guest runs) is reported as capability_denied, so in both
		// cases the instance and its state are kept.
		if wassetteerr.Is(err, wassetteerr.CodeExecutionTrapped) {
			r.closeStatefulInstance(ctx)
		}
		return nil, err
	}
	return out, nil
}

func callAndUnpack(
	ctx context.Context,
	inst runtime.Instance,
	rawFunctionName string,
	pack func(runtime.Instance) ([]uint64, error),
	unpack func(runtime.Instance, []uint64) (interface{}, error),
) (interface{}, error) {
	args, err := pack(inst)
	if err != nil {
		return nil, err
	}
	results, err := inst.Call(ctx, rawFunctionName, args)
	if err != nil {
		return nil, err
	}
	return unpack(inst, results)
}
