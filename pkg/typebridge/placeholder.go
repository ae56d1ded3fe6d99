package typebridge

// Placeholder produces the zero-value of t in the runtime's typed-value
// representation. The invocation engine returns these zero values when
// a guest hands back a null result buffer; any other result buffer is
// decoded instead.
func Placeholder(t *Type) interface{} {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindBool:
		return false
	case KindS8, KindU8, KindS16, KindU16, KindS32, KindU32, KindS64, KindU64:
		return int64(0)
	case KindF32, KindF64:
		return float64(0)
	case KindChar:
		return rune(0)
	case KindString:
		return ""
	case KindList:
		return []interface{}{}
	case KindTuple:
		out := make([]interface{}, len(t.Items))
		for i, item := range t.Items {
			out[i] = Placeholder(item)
		}
		return out
	case KindRecord:
		out := make(map[string]interface{}, len(t.Fields))
		for _, f := range t.Fields {
			out[f.Name] = Placeholder(f.Type)
		}
		return out
	case KindVariant:
		if len(t.Cases) == 0 {
			return Variant{}
		}
		first := t.Cases[0]
		v := Variant{Case: first.Name}
		if first.Payload != nil {
			v.Payload = Placeholder(first.Payload)
		}
		return v
	case KindEnum:
		if len(t.EnumCases) == 0 {
			return ""
		}
		return t.EnumCases[0]
	case KindOption:
		return nil // None
	case KindResult:
		r := Result{Ok: true}
		if t.Ok != nil {
			r.Value = Placeholder(t.Ok)
		}
		return r
	case KindFlags:
		return []string{}
	case KindResource:
		return Resource{TypeName: t.ResourceName}
	}
	return nil
}
