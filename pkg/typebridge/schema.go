package typebridge

import (
	"fmt"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// JSONSchema is a JSON Schema document represented as a plain map so it
// marshals with encoding/json without an intermediate struct per shape.
type JSONSchema map[string]interface{}

// Schema converts an interface Type into its JSON Schema representation,
// per the exhaustive mapping table in the type bridge design.
func Schema(t *Type) (JSONSchema, error) {
	if t == nil {
		return JSONSchema{}, nil
	}

	switch t.Kind {
	case KindBool:
		return JSONSchema{"type": "boolean"}, nil

	case KindS8, KindU8, KindS16, KindU16, KindS32, KindU32, KindS64, KindU64, KindF32, KindF64:
		return JSONSchema{"type": "number"}, nil

	case KindChar:
		return JSONSchema{"type": "string", "description": "1 unicode codepoint"}, nil

	case KindString:
		return JSONSchema{"type": "string"}, nil

	case KindList:
		elemSchema, err := Schema(t.Elem)
		if err != nil {
			return nil, err
		}
		return JSONSchema{"type": "array", "items": elemSchema}, nil

	case KindTuple:
		prefix := make([]JSONSchema, 0, len(t.Items))
		for _, item := range t.Items {
			s, err := Schema(item)
			if err != nil {
				return nil, err
			}
			prefix = append(prefix, s)
		}
		return JSONSchema{
			"type":        "array",
			"prefixItems": prefix,
			"minItems":    len(t.Items),
			"maxItems":    len(t.Items),
		}, nil

	case KindRecord:
		props := JSONSchema{}
		required := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			s, err := Schema(f.Type)
			if err != nil {
				return nil, err
			}
			props[f.Name] = s
			required = append(required, f.Name)
		}
		return JSONSchema{
			"type":       "object",
			"properties": props,
			"required":   required,
		}, nil

	case KindVariant:
		oneOf := make([]JSONSchema, 0, len(t.Cases))
		for _, c := range t.Cases {
			required := []string{"tag"}
			props := JSONSchema{"tag": JSONSchema{"const": c.Name}}
			if c.Payload != nil {
				s, err := Schema(c.Payload)
				if err != nil {
					return nil, err
				}
				props["val"] = s
				required = append(required, "val")
			}
			oneOf = append(oneOf, JSONSchema{
				"type":       "object",
				"properties": props,
				"required":   required,
			})
		}
		return JSONSchema{"oneOf": oneOf}, nil

	case KindEnum:
		cases := make([]string, len(t.EnumCases))
		copy(cases, t.EnumCases)
		return JSONSchema{"type": "string", "enum": cases}, nil

	case KindOption:
		inner, err := Schema(t.Inner)
		if err != nil {
			return nil, err
		}
		return JSONSchema{"anyOf": []JSONSchema{{"type": "null"}, inner}}, nil

	case KindResult:
		okBranch := JSONSchema{"type": "object", "properties": JSONSchema{}, "required": []string{}}
		if t.Ok != nil {
			s, err := Schema(t.Ok)
			if err != nil {
				return nil, err
			}
			okBranch["properties"] = JSONSchema{"ok": s}
			okBranch["required"] = []string{"ok"}
		}
		errBranch := JSONSchema{"type": "object", "properties": JSONSchema{}, "required": []string{}}
		if t.Err != nil {
			s, err := Schema(t.Err)
			if err != nil {
				return nil, err
			}
			errBranch["properties"] = JSONSchema{"err": s}
			errBranch["required"] = []string{"err"}
		}
		return JSONSchema{"oneOf": []JSONSchema{okBranch, errBranch}}, nil

	case KindFlags:
		return JSONSchema{"type": "array", "items": JSONSchema{"type": "string"}}, nil

	case KindResource:
		return JSONSchema{
			"type":        "string",
			"description": fmt.Sprintf("%s resource: %s", t.ResourceName, t.ResourceName),
		}, nil
	}

	return nil, wassetteerr.New(wassetteerr.CodeUnsupportedType, fmt.Sprintf("unsupported type kind %q", t.Kind))
}

// ResultSchema wraps a function's result types per the "Result wrapping"
// rule: zero returns -> empty object; one return -> {result: schema};
// multiple -> {result: {val0: ..., val1: ...}}.
func ResultSchema(results []*Type) (JSONSchema, error) {
	switch len(results) {
	case 0:
		return JSONSchema{"type": "object", "properties": JSONSchema{}}, nil
	case 1:
		s, err := Schema(results[0])
		if err != nil {
			return nil, err
		}
		return JSONSchema{
			"type":       "object",
			"properties": JSONSchema{"result": s},
			"required":   []string{"result"},
		}, nil
	default:
		inner := JSONSchema{}
		required := make([]string, 0, len(results))
		for i, r := range results {
			s, err := Schema(r)
			if err != nil {
				return nil, err
			}
			name := fmt.Sprintf("val%d", i)
			inner[name] = s
			required = append(required, name)
		}
		return JSONSchema{
			"type": "object",
			"properties": JSONSchema{
				"result": JSONSchema{
					"type":       "object",
					"properties": inner,
					"required":   required,
				},
			},
			"required": []string{"result"},
		}, nil
	}
}

// InputSchema builds the JSON Schema for a function's parameter object:
// an object keyed by parameter name, all parameters required.
func InputSchema(params []Param) (JSONSchema, error) {
	props := JSONSchema{}
	required := make([]string, 0, len(params))
	for _, p := range params {
		s, err := Schema(p.Type)
		if err != nil {
			return nil, err
		}
		props[p.Name] = s
		required = append(required, p.Name)
	}
	return JSONSchema{
		"type":       "object",
		"properties": props,
		"required":   required,
	}, nil
}
