package talk

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// TestTokenPrefix marks preview tokens so they can never collide with, or
// be mistaken for, production distribution tokens.
const TestTokenPrefix = "TEST_"

const tokenBytes = 24

// NewDistributionToken returns a high-entropy token used as the sole
// credential in confirmation links.
func NewDistributionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewTestToken returns a preview token carrying the TEST_ prefix.
func NewTestToken() (string, error) {
	token, err := NewDistributionToken()
	if err != nil {
		return "", err
	}
	return TestTokenPrefix + token, nil
}

// IsTestToken reports whether a token addresses a test distribution.
func IsTestToken(token string) bool {
	return strings.HasPrefix(token, TestTokenPrefix)
}
