package typebridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeToolName(t *testing.T) {
	cases := map[string]string{
		"my:interface/foo.bar": "my_interface_foo_bar",
		"echo":                 "echo",
		"Fetch-URL":            "fetch-url",
		"a:b":                  "a_b",
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeToolName(raw))
	}
}

func TestToolName_WorldLevel(t *testing.T) {
	id := FunctionID{FunctionName: "echo"}
	assert.Equal(t, "echo", RawName(id))
	assert.Equal(t, "echo", ToolName(id))
}

func TestToolName_Interface(t *testing.T) {
	id := FunctionID{InterfaceName: "wasi:http/outgoing", FunctionName: "fetch-url"}
	assert.Equal(t, "wasi:http/outgoing#fetch-url", RawName(id))
	assert.Equal(t, "wasi_http_outgoing_fetch-url", ToolName(id))
}

func TestToolName_DeterministicAndCollisionFree(t *testing.T) {
	// Distinct valid identifiers (hyphens are preserved verbatim) must
	// normalize to distinct names.
	a := ToolName(FunctionID{InterfaceName: "pkg:ns/iface-one", FunctionName: "run"})
	b := ToolName(FunctionID{InterfaceName: "pkg:ns/iface-two", FunctionName: "run"})
	assert.NotEqual(t, a, b)

	// Same inputs always produce the same name.
	assert.Equal(t, a, ToolName(FunctionID{InterfaceName: "pkg:ns/iface-one", FunctionName: "run"}))
}

func TestValidToolName(t *testing.T) {
	assert.True(t, ValidToolName("run"))
	assert.True(t, ValidToolName("run-tool_2"))
	assert.False(t, ValidToolName(""))
	assert.False(t, ValidToolName("has space"))
	assert.False(t, ValidToolName("has.dot"))
}
