package typebridge

import "github.com/wassette-go/wassette/pkg/wassetteerr"

// Descriptor describes one tool generated from an exported function.
type Descriptor struct {
	ToolName     string
	FunctionID   FunctionID
	InputSchema  JSONSchema
	OutputSchema JSONSchema
	Description  string
}

// BuildDescriptors introspects a component's export surface (its
// signatures) and produces one tool descriptor per function, applying
// tool-name normalization and an optional filter. It fails with
// introspection_failed if two signatures within the same component
// collide on normalized tool name (it should never happen for valid
// component-model identifiers, but a malformed component's export
// surface is not trusted).
func BuildDescriptors(signatures []Signature, keep func(FunctionID) bool) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(signatures))
	seen := make(map[string]FunctionID, len(signatures))

	for _, sig := range signatures {
		if keep != nil && !keep(sig.ID) {
			continue
		}

		name := ToolName(sig.ID)
		if !ValidToolName(name) {
			return nil, wassetteerr.New(wassetteerr.CodeIntrospectionFailed,
				"normalized tool name is not protocol-valid: "+name)
		}
		if prior, ok := seen[name]; ok {
			return nil, wassetteerr.New(wassetteerr.CodeIntrospectionFailed,
				"duplicate tool name within component: "+name).
				WithDetail("first", prior.String()).
				WithDetail("second", sig.ID.String())
		}
		seen[name] = sig.ID

		input, err := InputSchema(sig.Params)
		if err != nil {
			return nil, wassetteerr.Wrap(wassetteerr.CodeIntrospectionFailed, "building input schema", err)
		}
		output, err := ResultSchema(sig.Results)
		if err != nil {
			return nil, wassetteerr.Wrap(wassetteerr.CodeIntrospectionFailed, "building output schema", err)
		}

		out = append(out, Descriptor{
			ToolName:     name,
			FunctionID:   sig.ID,
			InputSchema:  input,
			OutputSchema: output,
			Description:  RawName(sig.ID),
		})
	}

	return out, nil
}
