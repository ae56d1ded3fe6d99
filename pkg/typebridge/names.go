package typebridge

import "strings"

// RawName builds the raw, pre-normalization name for an exported function:
// "<interface>#<function>", or just "<function>" for world-level exports.
func RawName(id FunctionID) string {
	if id.InterfaceName == "" {
		return id.FunctionName
	}
	return id.InterfaceName + "#" + id.FunctionName
}

// NormalizeToolName applies the canonical tool-name normalization:
// lowercase, replace ':', '/', '.' with '_', preserve '-' and ASCII
// alphanumerics, replace anything else with '_'.
//
// Because valid component-model identifiers permit hyphens but never
// underscores or dots in packages/interfaces, this is collision-free
// across any two distinct valid interface names.
func NormalizeToolName(raw string) string {
	lower := strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r == ':' || r == '/' || r == '.':
			b.WriteByte('_')
		case r == '-':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ToolName produces the normalized, protocol-valid tool name for an
// exported function.
func ToolName(id FunctionID) string {
	return NormalizeToolName(RawName(id))
}

// ValidToolName reports whether name matches the tool-name grammar
// ^[a-zA-Z0-9_-]{1,128}$.
func ValidToolName(name string) bool {
	if len(name) == 0 || len(name) > 128 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
