package talk

import (
	"strings"
	"testing"
)

func TestNewDistributionTokenIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := NewDistributionToken()
		if err != nil {
			t.Fatalf("NewDistributionToken() error = %v", err)
		}
		if len(token) != tokenBytes*2 {
			t.Fatalf("NewDistributionToken() len = %d", len(token))
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}

func TestTestTokenPrefix(t *testing.T) {
	token, err := NewTestToken()
	if err != nil {
		t.Fatalf("NewTestToken() error = %v", err)
	}
	if !strings.HasPrefix(token, TestTokenPrefix) {
		t.Fatalf("NewTestToken() = %q, want %q prefix", token, TestTokenPrefix)
	}
	if !IsTestToken(token) {
		t.Fatalf("IsTestToken(%q) = false", token)
	}

	prod, err := NewDistributionToken()
	if err != nil {
		t.Fatalf("NewDistributionToken() error = %v", err)
	}
	if IsTestToken(prod) {
		t.Fatalf("IsTestToken(production token) = true")
	}
}
