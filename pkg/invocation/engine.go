// Package invocation is the Invocation Engine (C5): it decodes a tool
// call's JSON arguments per the target function's declared signature,
// dispatches the call through the component's isolation mode, and
// structures the typed result back into the protocol's JSON shape.
// Capability-context assembly itself lives in pkg/policy; this package
// only consumes the materialized context and hands it to the runtime.
package invocation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wassette-go/wassette/pkg/runtime"
	"github.com/wassette-go/wassette/pkg/typebridge"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Record is the narrow surface the invocation engine needs from a
// loaded component: run rawFunctionName under the component's declared
// isolation mode, letting pack/unpack carry typed values across the
// guest boundary. Satisfied by *pkg/lifecycle.ComponentRecord without
// either package importing the other.
type Record interface {
	Invoke(
		ctx context.Context,
		caps runtime.HostContext,
		rawFunctionName string,
		pack func(runtime.Instance) ([]uint64, error),
		unpack func(runtime.Instance, []uint64) (interface{}, error),
	) (interface{}, error)
}

// Call executes one tool invocation end to end: DecodeArgs per sig's
// declared parameters, dispatch rawFunctionName through rec under caps,
// and wrap the typed return values per the result-wrapping rule
// (zero-return → {}, single-return → {"result": ...}, multi-return →
// {"result": {"val0": ..., "val1": ..., ...}}).
func Call(
	ctx context.Context,
	rec Record,
	caps runtime.HostContext,
	sig typebridge.Signature,
	rawFunctionName string,
	jsonArgs map[string]interface{},
) (map[string]interface{}, error) {
	decoded, err := typebridge.DecodeArgs(jsonArgs, sig.Params)
	if err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodeDecodingFailed, "failed to decode tool arguments", err)
	}

	pack, unpack := packers(ctx, sig, decoded)

	raw, err := rec.Invoke(ctx, caps, rawFunctionName, pack, unpack)
	if err != nil {
		return nil, err
	}

	values, ok := raw.([]interface{})
	if !ok {
		return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "invocation produced an unexpected result shape")
	}

	out, err := typebridge.EncodeResults(sig.Results, values)
	if err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodeEncodingFailed, "failed to encode tool result", err)
	}
	return out, nil
}

// packers selects the pack/unpack pair for sig: a raw scalar
// passthrough for a fallback signature synthesized with no type
// sidecar, or the JSON-buffer calling convention for a fully typed one.
func packers(
	ctx context.Context,
	sig typebridge.Signature,
	decoded map[string]interface{},
) (func(runtime.Instance) ([]uint64, error), func(runtime.Instance, []uint64) (interface{}, error)) {
	if sig.Raw {
		return rawPack(decoded, sig.Params), rawUnpack(sig.Results)
	}
	return jsonPack(ctx, decoded, sig), jsonUnpack(ctx, sig)
}

// rawPack passes each decoded parameter directly as a core-wasm
// register, used for the flat s64-only fallback signature.
func rawPack(decoded map[string]interface{}, params []typebridge.Param) func(runtime.Instance) ([]uint64, error) {
	return func(runtime.Instance) ([]uint64, error) {
		args := make([]uint64, len(params))
		for i, p := range params {
			n, ok := asInt64(decoded[p.Name])
			if !ok {
				return nil, wassetteerr.TypeMismatch(p.Name, "integral value for raw passthrough parameter", decoded[p.Name])
			}
			args[i] = uint64(n)
		}
		return args, nil
	}
}

// rawUnpack reads each core-wasm result register back as a raw s64.
func rawUnpack(results []*typebridge.Type) func(runtime.Instance, []uint64) (interface{}, error) {
	return func(_ runtime.Instance, raw []uint64) (interface{}, error) {
		out := make([]interface{}, len(results))
		for i := range results {
			if i >= len(raw) {
				return nil, wassetteerr.New(wassetteerr.CodeDecodingFailed, "raw passthrough call returned too few results")
			}
			out[i] = int64(raw[i])
		}
		return out, nil
	}
}

// jsonPack marshals decoded's typed parameters to a JSON object keyed
// by name, writes it into guest memory via the instance's allocator,
// and calls with a (ptr, len) register pair — the calling convention
// every composite (string/list/record/...) argument uses since full
// canonical-ABI lifting is out of scope (see pkg/runtime's package doc).
func jsonPack(ctx context.Context, decoded map[string]interface{}, sig typebridge.Signature) func(runtime.Instance) ([]uint64, error) {
	return func(inst runtime.Instance) ([]uint64, error) {
		obj := make(map[string]interface{}, len(sig.Params))
		for _, p := range sig.Params {
			ev, err := typebridge.Encode(decoded[p.Name], p.Type)
			if err != nil {
				return nil, wassetteerr.Wrap(wassetteerr.CodeEncodingFailed, "failed to encode argument "+p.Name, err)
			}
			obj[p.Name] = ev
		}
		data, err := json.Marshal(obj)
		if err != nil {
			return nil, wassetteerr.Wrap(wassetteerr.CodeEncodingFailed, "failed to marshal arguments buffer", err)
		}
		ptr, err := inst.Alloc(ctx, uint32(len(data)))
		if err != nil {
			return nil, err
		}
		if !inst.WriteMemory(ctx, ptr, data) {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "failed to write arguments buffer into guest memory")
		}
		return []uint64{uint64(ptr), uint64(len(data))}, nil
	}
}

// jsonUnpack reads the (ptr, len) result buffer the guest returns,
// JSON-decodes it, and converts each declared result back into its
// typed runtime representation.
func jsonUnpack(ctx context.Context, sig typebridge.Signature) func(runtime.Instance, []uint64) (interface{}, error) {
	return func(inst runtime.Instance, raw []uint64) (interface{}, error) {
		if len(sig.Results) == 0 {
			return []interface{}{}, nil
		}
		if len(raw) != 2 {
			return nil, wassetteerr.New(wassetteerr.CodeDecodingFailed, "result buffer call must return a (ptr, len) pair")
		}
		if raw[0] == 0 && raw[1] == 0 {
			// A null result buffer yields each declared result's
			// zero value (typebridge.Placeholder).
			out := make([]interface{}, len(sig.Results))
			for i, t := range sig.Results {
				out[i] = typebridge.Placeholder(t)
			}
			return out, nil
		}
		data, ok := inst.ReadMemory(ctx, uint32(raw[0]), uint32(raw[1]))
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeDecodingFailed, "failed to read result buffer from guest memory")
		}

		if len(sig.Results) == 1 {
			var v interface{}
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, wassetteerr.Wrap(wassetteerr.CodeDecodingFailed, "failed to parse result buffer", err)
			}
			decoded, err := typebridge.Decode(v, sig.Results[0], "result")
			if err != nil {
				return nil, err
			}
			return []interface{}{decoded}, nil
		}

		var obj map[string]interface{}
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, wassetteerr.Wrap(wassetteerr.CodeDecodingFailed, "failed to parse result buffer", err)
		}
		out := make([]interface{}, len(sig.Results))
		for i, t := range sig.Results {
			key := fmt.Sprintf("val%d", i)
			v, ok := obj[key]
			if !ok {
				return nil, wassetteerr.MissingField(key)
			}
			decoded, err := typebridge.Decode(v, t, key)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	}
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case rune:
		return int64(n), true
	}
	return 0, false
}
