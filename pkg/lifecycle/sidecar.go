package lifecycle

import (
	"encoding/json"
	"os"

	"github.com/wassette-go/wassette/pkg/typebridge"
	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// sidecarPath returns the path of the optional JSON file describing a
// component's rich interface-type signatures, alongside its cached
// binary. Full canonical-ABI introspection (decoding WIT-described
// records/variants straight out of the component binary) is out of
// scope; a component that ships this file gets the real typed
// surface, and one that doesn't falls back to a flat passthrough
// signature per exported core function (see fallbackSignatures).
func sidecarPath(binaryPath string) string {
	return binaryPath[:len(binaryPath)-len(".wasm")] + ".types.json"
}

// loadSidecarSignatures reads and parses the sidecar file for a
// component's binary, returning (nil, nil) if none exists.
func loadSidecarSignatures(binaryPath string) ([]typebridge.Signature, error) {
	data, err := os.ReadFile(sidecarPath(binaryPath))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodeIntrospectionFailed, "failed to read component type sidecar", err)
	}

	var sigs []typebridge.Signature
	if err := json.Unmarshal(data, &sigs); err != nil {
		return nil, wassetteerr.Wrap(wassetteerr.CodeIntrospectionFailed, "failed to parse component type sidecar", err)
	}
	return sigs, nil
}

// fallbackSignatures synthesizes a signature per raw exported function
// name when no type sidecar is present: a single s64 parameter named
// "value" and a single s64 result, regardless of the export's core
// types, enough to round-trip simple demo components without claiming
// knowledge of their real interface types.
func fallbackSignatures(exportNames []string) []typebridge.Signature {
	sigs := make([]typebridge.Signature, 0, len(exportNames))
	for _, name := range exportNames {
		sigs = append(sigs, typebridge.Signature{
			ID:      typebridge.FunctionID{FunctionName: name, Kind: typebridge.FreeFunction},
			Params:  []typebridge.Param{{Name: "value", Type: &typebridge.Type{Kind: typebridge.KindS64}}},
			Results: []*typebridge.Type{{Kind: typebridge.KindS64}},
			Raw:     true,
		})
	}
	return sigs
}
