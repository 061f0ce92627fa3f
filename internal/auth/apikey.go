package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// API key format.
const (
	// APIKeyPrefix starts every key.
	APIKeyPrefix = "ak_prod_"

	// apiKeyEntropy is the number of random bytes in a key.
	apiKeyEntropy = 32

	// apiKeyEncodedLen is the padded base64 length of apiKeyEntropy bytes.
	apiKeyEncodedLen = 44

	// APIKeyLength is the total length of a well-formed key.
	APIKeyLength = len(APIKeyPrefix) + apiKeyEncodedLen
)

// APIKey is a well-formed plaintext API key.
type APIKey struct {
	raw string
}

// GenerateAPIKey creates a new key from 32 bytes of crypto/rand entropy.
func GenerateAPIKey() (APIKey, error) {
	b := make([]byte, apiKeyEntropy)
	if _, err := rand.Read(b); err != nil {
		return APIKey{}, fmt.Errorf("generating api key: %w", err)
	}
	return APIKey{raw: APIKeyPrefix + base64.StdEncoding.EncodeToString(b)}, nil
}

// NewAPIKey parses a presented key. The key must carry the exact prefix
// followed by the padded standard base64 encoding of exactly 32 bytes.
func NewAPIKey(raw string) (APIKey, error) {
	body, ok := strings.CutPrefix(raw, APIKeyPrefix)
	if !ok {
		return APIKey{}, fmt.Errorf("%w: API key must start with %s", ErrInvalidFormat, APIKeyPrefix)
	}
	if len(body) != apiKeyEncodedLen {
		return APIKey{}, fmt.Errorf("%w: API key has invalid length", ErrInvalidFormat)
	}
	decoded, err := base64.StdEncoding.Strict().DecodeString(body)
	if err != nil || len(decoded) != apiKeyEntropy {
		return APIKey{}, fmt.Errorf("%w: API key is not valid base64", ErrInvalidFormat)
	}
	return APIKey{raw: raw}, nil
}

// Hash returns the hex SHA-256 digest used to store and look up the key.
func (k APIKey) Hash() string {
	h := sha256.Sum256([]byte(k.raw))
	return hex.EncodeToString(h[:])
}

// Plaintext returns the key itself. It is shown to the client once, at issue.
func (k APIKey) Plaintext() string {
	return k.raw
}

// String never reveals the key.
func (k APIKey) String() string {
	return APIKeyPrefix + "[REDACTED]"
}
