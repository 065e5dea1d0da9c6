package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyGenerator_Generate(t *testing.T) {
	gen := NewAPIKeyGenerator()

	key, err := gen.Generate()
	require.NoError(t, err)
	assert.Len(t, key, APIKeyLength)
	assert.True(t, gen.ValidFormat(key))
}

func TestAPIKeyGenerator_Generate_Unique(t *testing.T) {
	gen := NewAPIKeyGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := gen.Generate()
		require.NoError(t, err)
		assert.False(t, seen[key], "duplicate key generated")
		seen[key] = true
	}
}

func TestAPIKeyGenerator_ValidFormat(t *testing.T) {
	gen := NewAPIKeyGenerator()

	valid, err := gen.Generate()
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"generated key", valid, true},
		{"empty", "", false},
		{"too short", valid[:APIKeyLength-1], false},
		{"too long", valid + "x", false},
		{"standard base64 padding", strings.Repeat("A", APIKeyLength-1) + "=", false},
		{"non-urlsafe character", strings.Repeat("A", APIKeyLength-1) + "+", false},
		{"whitespace", strings.Repeat("A", APIKeyLength-1) + " ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gen.ValidFormat(tt.key))
		})
	}
}
