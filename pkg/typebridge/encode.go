package typebridge

import (
	"fmt"
	"math"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Encode converts a typed runtime value back into its JSON-ready
// representation (the shapes produced here are exactly what
// encoding/json.Marshal expects).
func Encode(v interface{}, t *Type) (interface{}, error) {
	if t == nil {
		return v, nil
	}

	switch t.Kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected bool")
		}
		return b, nil

	case KindS8, KindU8, KindS16, KindU16, KindS32, KindU32, KindS64, KindU64:
		return encodeInt(v)

	case KindF32, KindF64:
		return encodeFloat(v)

	case KindChar:
		r, ok := v.(rune)
		if !ok {
			if i, ok := v.(int32); ok {
				r = rune(i)
			} else {
				return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected char")
			}
		}
		return string(r), nil

	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected string")
		}
		return s, nil

	case KindList, KindTuple:
		arr, ok := v.([]interface{})
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected array")
		}
		elemType := t.Elem
		out := make([]interface{}, len(arr))
		for i, el := range arr {
			et := elemType
			if t.Kind == KindTuple {
				et = t.Items[i]
			}
			ev, err := Encode(el, et)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil

	case KindRecord:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected record")
		}
		out := make(map[string]interface{}, len(t.Fields))
		for _, f := range t.Fields {
			fv, err := Encode(obj[f.Name], f.Type)
			if err != nil {
				return nil, err
			}
			out[f.Name] = fv
		}
		return out, nil

	case KindVariant:
		vv, ok := v.(Variant)
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected variant")
		}
		out := map[string]interface{}{"tag": vv.Case}
		for _, c := range t.Cases {
			if c.Name == vv.Case && c.Payload != nil {
				pv, err := Encode(vv.Payload, c.Payload)
				if err != nil {
					return nil, err
				}
				out["val"] = pv
			}
		}
		return out, nil

	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected enum case string")
		}
		return s, nil

	case KindOption:
		if v == nil {
			return nil, nil
		}
		return Encode(v, t.Inner)

	case KindResult:
		rv, ok := v.(Result)
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected result")
		}
		if rv.Ok {
			out := map[string]interface{}{}
			if t.Ok != nil {
				ev, err := Encode(rv.Value, t.Ok)
				if err != nil {
					return nil, err
				}
				out["ok"] = ev
			}
			return out, nil
		}
		out := map[string]interface{}{}
		if t.Err != nil {
			ev, err := Encode(rv.Value, t.Err)
			if err != nil {
				return nil, err
			}
			out["err"] = ev
		}
		return out, nil

	case KindFlags:
		names, ok := v.([]string)
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected flag name slice")
		}
		out := make([]interface{}, len(names))
		for i, n := range names {
			out[i] = n
		}
		return out, nil

	case KindResource:
		r, ok := v.(Resource)
		if !ok {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected resource handle")
		}
		return r.Handle, nil
	}

	return nil, wassetteerr.New(wassetteerr.CodeUnsupportedType, fmt.Sprintf("unsupported type kind %q", t.Kind))
}

func encodeInt(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case int:
		return float64(n), nil
	}
	return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected integer value")
}

// encodeFloat emits IEEE-754 NaN/+-Inf as sentinel strings because
// encoding/json refuses to marshal non-finite float64 values. Applied
// uniformly to every float-typed value the bridge encodes.
func encodeFloat(v interface{}) (interface{}, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "expected float value")
	}
	switch {
	case math.IsNaN(f):
		return "NaN", nil
	case math.IsInf(f, 1):
		return "Infinity", nil
	case math.IsInf(f, -1):
		return "-Infinity", nil
	default:
		return f, nil
	}
}

// EncodeResults wraps a function's decoded return values per the result
// wrapping rule and returns the JSON-ready {"result": ...} (or {}) object.
func EncodeResults(results []*Type, values []interface{}) (map[string]interface{}, error) {
	switch len(results) {
	case 0:
		return map[string]interface{}{}, nil
	case 1:
		v, err := Encode(values[0], results[0])
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"result": v}, nil
	default:
		if len(values) != len(results) {
			return nil, wassetteerr.New(wassetteerr.CodeEncodingFailed, "result arity mismatch")
		}
		inner := make(map[string]interface{}, len(results))
		for i, r := range results {
			v, err := Encode(values[i], r)
			if err != nil {
				return nil, err
			}
			inner[fmt.Sprintf("val%d", i)] = v
		}
		return map[string]interface{}{"result": inner}, nil
	}
}
