package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaterialize_Nil(t *testing.T) {
	ctx := Materialize(nil)
	assert.False(t, ctx.AllowsNetwork("x.com"))
	assert.False(t, ctx.AllowsStorage("fs:///a", string(AccessRead)))
	assert.False(t, ctx.AllowsEnvironment("K"))
}

func TestCapabilityContext_AllowsStorage(t *testing.T) {
	doc := NewDocument()
	doc.GrantStorage("fs:///data/**", []string{"read"})
	ctx := Materialize(doc)

	assert.True(t, ctx.AllowsStorage("fs:///data/x", string(AccessRead)))
	assert.False(t, ctx.AllowsStorage("fs:///data/x", string(AccessWrite)))
	assert.False(t, ctx.AllowsStorage("fs:///other/x", string(AccessRead)))
}

func TestCapabilityContext_AllowsNetwork(t *testing.T) {
	doc := NewDocument()
	doc.GrantNetwork("*.example.com")
	ctx := Materialize(doc)

	assert.True(t, ctx.AllowsNetwork("a.example.com"))
	assert.False(t, ctx.AllowsNetwork("a.b.example.com"))
}

func TestCapabilityContext_AllowsEnvironment(t *testing.T) {
	doc := NewDocument()
	doc.GrantEnvironment("API_KEY")
	ctx := Materialize(doc)

	assert.True(t, ctx.AllowsEnvironment("API_KEY"))
	assert.False(t, ctx.AllowsEnvironment("OTHER"))
}
