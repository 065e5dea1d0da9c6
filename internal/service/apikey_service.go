package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
)

// apiKeyBytes is the entropy fed into each key. 32 random bytes encode
// to 43 URL-safe characters without padding.
const apiKeyBytes = 32

// APIKeyLength is the exact length of every issued key.
const APIKeyLength = 43

var apiKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// APIKeyGenerator implements ports.KeyGenerator with crypto/rand keys.
type APIKeyGenerator struct{}

// NewAPIKeyGenerator creates a new APIKeyGenerator.
func NewAPIKeyGenerator() *APIKeyGenerator {
	return &APIKeyGenerator{}
}

// Generate returns a fresh URL-safe API key.
func (g *APIKeyGenerator) Generate() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidFormat reports whether the key has the shape of an issued key.
// It is a cheap pre-filter only; possession of a well-formed key proves
// nothing until the key matches a stored user.
func (g *APIKeyGenerator) ValidFormat(key string) bool {
	return len(key) == APIKeyLength && apiKeyPattern.MatchString(key)
}
