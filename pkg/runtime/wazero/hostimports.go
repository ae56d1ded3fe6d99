package wazero

import (
	"context"

	wz "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wassette-go/wassette/pkg/runtime"
	"github.com/wassette-go/wassette/pkg/runtime/netguard"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// hostModuleName is the import module name components link their
// capability-gated host calls against.
const hostModuleName = "wassette:host"

// capsState carries one invocation's capability context through
// wazero's call chain, plus the denial that aborted it, if any. Each
// Instance.Call creates a fresh state, so one host module instance
// safely serves many concurrent stateless instantiations.
type capsState struct {
	caps   runtime.HostContext
	denied error
}

type capsContextKey struct{}

func newCapsContext(ctx context.Context, caps runtime.HostContext) (context.Context, *capsState) {
	st := &capsState{caps: caps}
	return context.WithValue(ctx, capsContextKey{}, st), st
}

func stateFromContext(ctx context.Context) *capsState {
	st, _ := ctx.Value(capsContextKey{}).(*capsState)
	return st
}

// deny records err as the invocation's outcome and unwinds the guest.
// The engine recovers the resulting trap, sees the recorded denial,
// and surfaces err (not execution_trapped) to the caller.
func (s *capsState) deny(err error) {
	s.denied = err
	panic(err)
}

// registerHostModule instantiates the host-function module every
// component's imports resolve against, once per Engine. Each function
// recovers the calling invocation's capability context from the Go
// context propagated through wazero's call chain. Access checks are
// enforcing, not advisory: a disallowed network/storage/environment
// access aborts the guest at the host boundary and fails the whole
// invocation with capability_denied, so a guest that skips or ignores
// the check result cannot proceed past it.
func registerHostModule(ctx context.Context, rt wz.Runtime) (api.Module, error) {
	return rt.NewHostModuleBuilder(hostModuleName).
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, hostPtr, hostLen uint32) uint32 {
			st := stateFromContext(ctx)
			if st == nil {
				return 0
			}
			target := readString(mod, hostPtr, hostLen)
			if _, err := netguard.New(st.caps).Allow(target); err != nil {
				st.deny(err)
			}
			return 1
		}).
		Export("network-allowed").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, uriPtr, uriLen, accessPtr, accessLen uint32) uint32 {
			st := stateFromContext(ctx)
			if st == nil {
				return 0
			}
			uri := readString(mod, uriPtr, uriLen)
			access := readString(mod, accessPtr, accessLen)
			if !st.caps.AllowsStorage(uri, access) {
				st.deny(wassetteerr.CapabilityDenied("storage", uri))
			}
			return 1
		}).
		Export("storage-allowed").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, keyPtr, keyLen uint32) uint32 {
			st := stateFromContext(ctx)
			if st == nil {
				return 0
			}
			if key := readString(mod, keyPtr, keyLen); !st.caps.AllowsEnvironment(key) {
				st.deny(wassetteerr.CapabilityDenied("environment", key))
			}
			return 1
		}).
		Export("environment-allowed").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, keyPtr, keyLen uint32) (uint32, uint32) {
			st := stateFromContext(ctx)
			if st == nil {
				return 0, 0
			}
			key := readString(mod, keyPtr, keyLen)
			if !st.caps.AllowsEnvironment(key) {
				st.deny(wassetteerr.CapabilityDenied("environment", key))
			}
			value, ok := st.caps.EnvValue(key)
			if !ok {
				return 0, 0
			}
			return writeGuestString(ctx, mod, value)
		}).
		Export("environment-get").
		Instantiate(ctx)
}

// writeGuestString allocates len(value) bytes via the guest's
// cabi_realloc export and copies value into it, returning the (ptr,
// len) pair a host import hands back to the guest for a string
// result. Returns (0, 0) if the guest exports no allocator or the
// write fails.
func writeGuestString(ctx context.Context, mod api.Module, value string) (uint32, uint32) {
	alloc := mod.ExportedFunction("cabi_realloc")
	if alloc == nil {
		return 0, 0
	}
	data := []byte(value)
	results, err := alloc.Call(ctx, 0, 0, 8, uint64(len(data)))
	if err != nil || len(results) == 0 {
		return 0, 0
	}
	ptr := uint32(results[0])
	if !mod.Memory().Write(ptr, data) {
		return 0, 0
	}
	return ptr, uint32(len(data))
}

// readString reads a UTF-8 string out of the guest's linear memory at
// [ptr, ptr+len), the same calling convention the component's imports
// use to pass string arguments to host functions.
func readString(mod api.Module, ptr, length uint32) string {
	buf, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return ""
	}
	return string(buf)
}
