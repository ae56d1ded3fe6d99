// Package runtime wraps the pure-Go WebAssembly core engine
// (tetratelabs/wazero) that instantiates component cores and executes
// their exported functions under a materialized capability context.
// Full canonical-ABI lifting (WIT-described records/variants/etc.
// marshaled across the component boundary) is out of scope per the
// host's own non-goals; functions are introspected at the core-wasm
// level by export name only and enriched, when a component ships one,
// by a JSON type sidecar describing the
// richer interface-type signature consumed by pkg/typebridge.
package runtime

import (
	"context"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// HostContext is the narrow surface the runtime needs from a
// materialized capability context, kept here (rather than importing
// pkg/policy directly) so runtime stays usable without pulling in the
// policy package's persistence concerns.
type HostContext interface {
	AllowsNetwork(host string) bool
	AllowsStorage(uri string, access string) bool
	AllowsEnvironment(key string) bool
	EnvValue(key string) (string, bool)
}

// Trap wraps a guest-side trap (unreachable, out-of-bounds memory
// access, stack overflow) surfaced by the underlying engine.
type Trap struct {
	Cause error
}

func (t *Trap) Error() string { return "component execution trapped: " + t.Cause.Error() }
func (t *Trap) Unwrap() error { return t.Cause }

// AsExecutionTrapped converts an error from an instance Call into the
// host's execution_trapped error kind, tagging the cause as a Trap so
// callers can tell a genuine guest-side abort apart from host-side
// codec failures that never executed guest code.
func AsExecutionTrapped(err error) error {
	if err == nil {
		return nil
	}
	return wassetteerr.Wrap(wassetteerr.CodeExecutionTrapped, "component trapped during execution", &Trap{Cause: err})
}

// Engine owns a shared compilation cache so multiple components don't
// each pay module-compile cost independently.
type Engine interface {
	// Compile parses and validates wasm bytes, returning a handle the
	// caller can Instantiate any number of times.
	Compile(ctx context.Context, wasmBytes []byte) (Module, error)

	// Close releases the engine's resources (compilation cache, any
	// background compiler threads).
	Close(ctx context.Context) error
}

// Module is a compiled, not-yet-instantiated component core.
type Module interface {
	// Instantiate creates a fresh, isolated instance wired to caps.
	// Each call produces an independent linear memory and globals;
	// stateless invocation instantiates-invokes-discards per call,
	// stateful invocation instantiates once and reuses the instance.
	Instantiate(ctx context.Context, caps HostContext) (Instance, error)

	// Close releases the compiled module.
	Close(ctx context.Context) error
}

// Instance is one instantiation of a component core, bound to a
// capability context for its lifetime.
type Instance interface {
	// ExportedFunctions lists the raw export names this instance
	// makes callable.
	ExportedFunctions() []string

	// Call invokes name with the given core-wasm arguments and
	// returns its core-wasm results.
	Call(ctx context.Context, name string, args []uint64) ([]uint64, error)

	// ReadMemory copies length bytes of guest linear memory starting
	// at ptr, used to read a composite (string/list/record/...)
	// argument or result lowered to a JSON buffer per the component's
	// canonical-ABI-style calling convention.
	ReadMemory(ctx context.Context, ptr, length uint32) ([]byte, bool)

	// WriteMemory writes data into guest linear memory at ptr.
	WriteMemory(ctx context.Context, ptr uint32, data []byte) bool

	// Alloc calls the guest's exported allocator (conventionally
	// "cabi_realloc") to reserve size bytes of linear memory for a
	// composite argument, returning the pointer. Returns
	// unsupported_type if the guest exports no allocator.
	Alloc(ctx context.Context, size uint32) (uint32, error)

	// Close tears down the instance (and, for a stateful component,
	// discards its persisted state).
	Close(ctx context.Context) error
}
