package typebridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Primitives(t *testing.T) {
	s, err := Schema(&Type{Kind: KindBool})
	require.NoError(t, err)
	assert.Equal(t, JSONSchema{"type": "boolean"}, s)

	s, err = Schema(&Type{Kind: KindS32})
	require.NoError(t, err)
	assert.Equal(t, JSONSchema{"type": "number"}, s)

	s, err = Schema(&Type{Kind: KindChar})
	require.NoError(t, err)
	assert.Equal(t, "string", s["type"])
	assert.Contains(t, s["description"], "codepoint")
}

func TestSchema_ListAndTuple(t *testing.T) {
	s, err := Schema(&Type{Kind: KindList, Elem: &Type{Kind: KindString}})
	require.NoError(t, err)
	assert.Equal(t, "array", s["type"])
	assert.Equal(t, JSONSchema{"type": "string"}, s["items"])

	s, err = Schema(&Type{Kind: KindTuple, Items: []*Type{{Kind: KindString}, {Kind: KindS32}}})
	require.NoError(t, err)
	assert.Equal(t, 2, s["minItems"])
	assert.Equal(t, 2, s["maxItems"])
}

func TestSchema_Record(t *testing.T) {
	s, err := Schema(&Type{Kind: KindRecord, Fields: []Field{
		{Name: "a", Type: &Type{Kind: KindString}},
		{Name: "b", Type: &Type{Kind: KindBool}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "object", s["type"])
	assert.ElementsMatch(t, []string{"a", "b"}, s["required"])
}

func TestSchema_Variant(t *testing.T) {
	s, err := Schema(&Type{Kind: KindVariant, Cases: []VariantCase{
		{Name: "positive", Payload: &Type{Kind: KindS32}},
		{Name: "zero"},
	}})
	require.NoError(t, err)
	oneOf := s["oneOf"].([]JSONSchema)
	require.Len(t, oneOf, 2)
	assert.ElementsMatch(t, []string{"tag", "val"}, oneOf[0]["required"])
	assert.ElementsMatch(t, []string{"tag"}, oneOf[1]["required"])
}

func TestSchema_EnumOptionResultFlagsResource(t *testing.T) {
	s, err := Schema(&Type{Kind: KindEnum, EnumCases: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s["enum"])

	s, err = Schema(&Type{Kind: KindOption, Inner: &Type{Kind: KindString}})
	require.NoError(t, err)
	anyOf := s["anyOf"].([]JSONSchema)
	require.Len(t, anyOf, 2)
	assert.Equal(t, "null", anyOf[0]["type"])

	s, err = Schema(&Type{Kind: KindResult, Ok: &Type{Kind: KindString}, Err: &Type{Kind: KindString}})
	require.NoError(t, err)
	oneOf := s["oneOf"].([]JSONSchema)
	require.Len(t, oneOf, 2)

	s, err = Schema(&Type{Kind: KindFlags, FlagNames: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "array", s["type"])

	s, err = Schema(&Type{Kind: KindResource, ResourceName: "file-handle"})
	require.NoError(t, err)
	assert.Equal(t, "string", s["type"])
}

func TestResultSchema_Arity(t *testing.T) {
	s, err := ResultSchema(nil)
	require.NoError(t, err)
	assert.Equal(t, "object", s["type"])
	assert.Empty(t, s["properties"])

	s, err = ResultSchema([]*Type{{Kind: KindString}})
	require.NoError(t, err)
	props := s["properties"].(JSONSchema)
	assert.Contains(t, props, "result")

	s, err = ResultSchema([]*Type{{Kind: KindString}, {Kind: KindString}})
	require.NoError(t, err)
	props = s["properties"].(JSONSchema)
	resultSchema := props["result"].(JSONSchema)
	innerProps := resultSchema["properties"].(JSONSchema)
	assert.Contains(t, innerProps, "val0")
	assert.Contains(t, innerProps, "val1")
}

func TestEncodeResults_Arity(t *testing.T) {
	m, err := EncodeResults(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, m)

	m, err = EncodeResults([]*Type{{Kind: KindString}}, []interface{}{"hi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"result": "hi"}, m)

	m, err = EncodeResults(
		[]*Type{{Kind: KindString}, {Kind: KindString}},
		[]interface{}{"a", "b"},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"result": map[string]interface{}{"val0": "a", "val1": "b"}}, m)
}
