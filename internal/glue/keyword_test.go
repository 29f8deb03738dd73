package glue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyword_Match(t *testing.T) {
	k := NewKeyword("glue", "Glue")

	assert.True(t, k.Match("GLUE Sync"))
	assert.True(t, k.Match("project glue"))
	// Substring matching over-matches words that merely contain the keyword.
	assert.True(t, k.Match("Glueless"))

	assert.False(t, k.Match("Gl ue"))
	assert.False(t, k.Match(""))
}

func TestKeyword_Canonical(t *testing.T) {
	k := NewKeyword("glue", "Glue")

	tests := map[string]string{
		"GLUE sync glue": "Glue sync Glue",
		"project gLuE":   "project Glue",
		"Glue":           "Glue",
		"Glueless":       "Glueless",
		"no keyword":     "no keyword",
	}
	for in, want := range tests {
		assert.Equal(t, want, k.Canonical(in), in)
	}
}
