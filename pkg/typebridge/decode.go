package typebridge

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// DecodeArgs pulls each declared parameter out of a JSON args object by
// name and converts it to its typed value. Decoding is schema-directed:
// the caller supplies the ordered (name, type) pairs.
func DecodeArgs(args map[string]interface{}, params []Param) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(params))
	for _, p := range params {
		raw, ok := args[p.Name]
		if !ok {
			return nil, wassetteerr.MissingField(p.Name)
		}
		v, err := Decode(raw, p.Type, p.Name)
		if err != nil {
			return nil, err
		}
		out[p.Name] = v
	}
	return out, nil
}

// Decode converts a single JSON-decoded value (as produced by
// encoding/json into interface{}) into its typed representation per t.
// path is the dotted field path used in error messages.
func Decode(raw interface{}, t *Type, path string) (interface{}, error) {
	if t == nil {
		return raw, nil
	}

	switch t.Kind {
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "boolean", raw)
		}
		return b, nil

	case KindS8, KindU8, KindS16, KindU16, KindS32, KindU32, KindS64, KindU64:
		return decodeInt(raw, t, path)

	case KindF32, KindF64:
		return decodeFloat(raw, path)

	case KindChar:
		s, ok := raw.(string)
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "1 unicode codepoint", raw)
		}
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError || size != len(s) {
			return nil, wassetteerr.TypeMismatch(path, "1 unicode codepoint", raw)
		}
		return r, nil

	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "string", raw)
		}
		return s, nil

	case KindList:
		arr, ok := raw.([]interface{})
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "array", raw)
		}
		out := make([]interface{}, len(arr))
		for i, el := range arr {
			v, err := Decode(el, t.Elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case KindTuple:
		arr, ok := raw.([]interface{})
		if !ok || len(arr) != len(t.Items) {
			return nil, wassetteerr.TypeMismatch(path, fmt.Sprintf("tuple of %d", len(t.Items)), raw)
		}
		out := make([]interface{}, len(arr))
		for i, el := range arr {
			v, err := Decode(el, t.Items[i], fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case KindRecord:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "object", raw)
		}
		known := make(map[string]*Type, len(t.Fields))
		for _, f := range t.Fields {
			known[f.Name] = f.Type
		}
		for k := range obj {
			if _, ok := known[k]; !ok {
				return nil, wassetteerr.UnknownField(path + "." + k)
			}
		}
		out := make(map[string]interface{}, len(t.Fields))
		for _, f := range t.Fields {
			raw, ok := obj[f.Name]
			if !ok {
				return nil, wassetteerr.MissingField(path + "." + f.Name)
			}
			v, err := Decode(raw, f.Type, path+"."+f.Name)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil

	case KindVariant:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "variant object", raw)
		}
		tagRaw, ok := obj["tag"]
		if !ok {
			return nil, wassetteerr.MissingField(path + ".tag")
		}
		tag, ok := tagRaw.(string)
		if !ok {
			return nil, wassetteerr.TypeMismatch(path+".tag", "string", tagRaw)
		}
		var matched *VariantCase
		for i := range t.Cases {
			if t.Cases[i].Name == tag {
				matched = &t.Cases[i]
				break
			}
		}
		if matched == nil {
			return nil, wassetteerr.TypeMismatch(path+".tag", "known variant case", tag)
		}
		val, hasVal := obj["val"]
		if matched.Payload != nil && !hasVal {
			return nil, wassetteerr.MissingField(path + ".val")
		}
		if matched.Payload == nil && hasVal {
			return nil, wassetteerr.UnknownField(path + ".val")
		}
		v := Variant{Case: tag}
		if matched.Payload != nil {
			payload, err := Decode(val, matched.Payload, path+".val")
			if err != nil {
				return nil, err
			}
			v.Payload = payload
		}
		return v, nil

	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "string", raw)
		}
		for _, c := range t.EnumCases {
			if c == s {
				return s, nil
			}
		}
		return nil, wassetteerr.TypeMismatch(path, "known enum case", s)

	case KindOption:
		if raw == nil {
			return nil, nil
		}
		return Decode(raw, t.Inner, path)

	case KindResult:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "result object", raw)
		}
		okRaw, hasOk := obj["ok"]
		errRaw, hasErr := obj["err"]
		switch {
		case hasOk && !hasErr:
			r := Result{Ok: true}
			if t.Ok != nil {
				v, err := Decode(okRaw, t.Ok, path+".ok")
				if err != nil {
					return nil, err
				}
				r.Value = v
			}
			return r, nil
		case hasErr && !hasOk:
			r := Result{Ok: false}
			if t.Err != nil {
				v, err := Decode(errRaw, t.Err, path+".err")
				if err != nil {
					return nil, err
				}
				r.Value = v
			}
			return r, nil
		default:
			return nil, wassetteerr.TypeMismatch(path, "exactly one of ok/err", raw)
		}

	case KindFlags:
		arr, ok := raw.([]interface{})
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "array of flag names", raw)
		}
		known := make(map[string]bool, len(t.FlagNames))
		for _, f := range t.FlagNames {
			known[f] = true
		}
		set := make(map[string]bool)
		for i, el := range arr {
			s, ok := el.(string)
			if !ok {
				return nil, wassetteerr.TypeMismatch(fmt.Sprintf("%s[%d]", path, i), "string", el)
			}
			if !known[s] {
				return nil, wassetteerr.TypeMismatch(fmt.Sprintf("%s[%d]", path, i), "known flag name", s)
			}
			set[s] = true // duplicates are idempotent
		}
		out := make([]string, 0, len(set))
		for _, f := range t.FlagNames {
			if set[f] {
				out = append(out, f)
			}
		}
		return out, nil

	case KindResource:
		s, ok := raw.(string)
		if !ok {
			return nil, wassetteerr.TypeMismatch(path, "resource handle string", raw)
		}
		return Resource{TypeName: t.ResourceName, Handle: s}, nil
	}

	return nil, wassetteerr.New(wassetteerr.CodeUnsupportedType, fmt.Sprintf("unsupported type kind %q", t.Kind))
}

func decodeInt(raw interface{}, t *Type, path string) (interface{}, error) {
	f, ok := asFloat(raw)
	if !ok {
		return nil, wassetteerr.TypeMismatch(path, "integer", raw)
	}
	if math.Trunc(f) != f {
		return nil, wassetteerr.TypeMismatch(path, "integer (non-integer fractional part)", raw)
	}
	width := t.IntWidth()
	if t.IsSignedInt() {
		v := int64(f)
		if float64(v) != f {
			return nil, wassetteerr.OutOfRange(path, raw, width)
		}
		lo, hi := signedRange(width)
		if v < lo || v > hi {
			return nil, wassetteerr.OutOfRange(path, raw, width)
		}
		return v, nil
	}
	// unsigned
	if f < 0 {
		return nil, wassetteerr.OutOfRange(path, raw, width)
	}
	v := uint64(f)
	if float64(v) != f {
		return nil, wassetteerr.OutOfRange(path, raw, width)
	}
	_, hi := unsignedRange(width)
	if v > hi {
		return nil, wassetteerr.OutOfRange(path, raw, width)
	}
	return v, nil
}

func decodeFloat(raw interface{}, path string) (interface{}, error) {
	if s, ok := raw.(string); ok {
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return nil, wassetteerr.TypeMismatch(path, "number", raw)
	}
	f, ok := asFloat(raw)
	if !ok {
		return nil, wassetteerr.TypeMismatch(path, "number", raw)
	}
	return f, nil
}

func asFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func signedRange(width int) (int64, int64) {
	switch width {
	case 8:
		return math.MinInt8, math.MaxInt8
	case 16:
		return math.MinInt16, math.MaxInt16
	case 32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func unsignedRange(width int) (uint64, uint64) {
	switch width {
	case 8:
		return 0, math.MaxUint8
	case 16:
		return 0, math.MaxUint16
	case 32:
		return 0, math.MaxUint32
	default:
		return 0, math.MaxUint64
	}
}
