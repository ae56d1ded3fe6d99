package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHost(t *testing.T) {
	assert.True(t, MatchHost("api.example.com", "api.example.com"))
	assert.False(t, MatchHost("api.example.com", "other.example.com"))

	assert.True(t, MatchHost("*.example.com", "a.example.com"))
	assert.False(t, MatchHost("*.example.com", "a.b.example.com"))
	assert.False(t, MatchHost("*.example.com", "example.com"))

	assert.True(t, MatchHost("*.Example.com", "a.EXAMPLE.com"))
}

func TestMatchStorage(t *testing.T) {
	assert.True(t, MatchStorage("fs:///a/b/**", "fs:///a/b/c"))
	assert.True(t, MatchStorage("fs:///a/b/**", "fs:///a/b/c/d"))
	assert.True(t, MatchStorage("fs:///a/b/**", "fs:///a/b"))
	assert.False(t, MatchStorage("fs:///a/b/**", "fs:///a/bc"))

	assert.True(t, MatchStorage("fs:///a/b/c", "fs:///a/b/c"))
	assert.False(t, MatchStorage("fs:///a/b/c", "fs:///a/b/c/d"))
}
