package policy

import "strings"

// MatchHost reports whether host satisfies the allow-listed pattern.
// A bare pattern ("api.example.com") matches only that exact host. A
// pattern prefixed with "*." matches hosts with exactly one additional
// leading label: "*.example.com" matches "a.example.com" but not
// "a.b.example.com" and not "example.com" itself.
func MatchHost(pattern, host string) bool {
	pattern = strings.ToLower(pattern)
	host = strings.ToLower(host)

	suffix, ok := strings.CutPrefix(pattern, "*.")
	if !ok {
		return pattern == host
	}
	if !strings.HasSuffix(host, "."+suffix) {
		return false
	}
	label := strings.TrimSuffix(host, "."+suffix)
	return label != "" && !strings.Contains(label, ".")
}

// MatchStorage reports whether a target fs:// URI is covered by an
// allow-listed rule URI. A rule ending in "/**" covers any path
// strictly under that prefix (recursively); any other rule URI must
// match the target exactly.
func MatchStorage(ruleURI, targetURI string) bool {
	prefix, ok := strings.CutSuffix(ruleURI, "/**")
	if !ok {
		return ruleURI == targetURI
	}
	return targetURI == prefix || strings.HasPrefix(targetURI, prefix+"/")
}
