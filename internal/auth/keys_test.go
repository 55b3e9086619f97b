package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}
	if !strings.HasPrefix(key, KeyPrefix) {
		t.Errorf("GenerateAPIKey() = %v, want prefix %v", key, KeyPrefix)
	}
	// Base64 URL encoding without padding: 32 bytes -> 43 characters
	if want := len(KeyPrefix) + 43; len(key) != want {
		t.Errorf("GenerateAPIKey() length = %v, want %v", len(key), want)
	}

	other, _ := GenerateAPIKey()
	if other == key {
		t.Error("two generated keys are equal")
	}
}

func TestHashAndVerifyAPIKey(t *testing.T) {
	key := "test-api-key-12345"

	hash, err := HashAPIKey(key)
	if err != nil {
		t.Fatalf("HashAPIKey() error = %v", err)
	}
	if !VerifyAPIKey(key, hash) {
		t.Error("VerifyAPIKey() failed for correct key")
	}
	if VerifyAPIKey("wrong-key", hash) {
		t.Error("VerifyAPIKey() succeeded for incorrect key")
	}
}

func TestVerifyAPIKeyConstantTime(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
		want     bool
	}{
		{"equal", "admin-123", "admin-123", true},
		{"not equal", "admin-456", "admin-123", false},
		{"empty got", "", "admin-123", false},
		{"empty expected", "admin-123", "", false},
		{"both empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyAPIKeyConstantTime(tt.got, tt.expected); got != tt.want {
				t.Errorf("VerifyAPIKeyConstantTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		want       string
	}{
		{"with Bearer prefix", "Bearer token123", "token123"},
		{"with bearer lowercase", "bearer token456", "token456"},
		{"with extra spaces", "Bearer  token789  ", "token789"},
		{"without Bearer prefix", "token999", "token999"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractBearerToken(tt.authHeader); got != tt.want {
				t.Errorf("ExtractBearerToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthenticator(t *testing.T) {
	hash, err := HashAPIKey("hashed-key")
	if err != nil {
		t.Fatalf("HashAPIKey() error = %v", err)
	}

	tests := []struct {
		name   string
		auth   *Authenticator
		header string
		want   bool
		errMsg string
	}{
		{"plain ok", NewAuthenticator("admin-123", ""), "Bearer admin-123", true, ""},
		{"plain wrong", NewAuthenticator("admin-123", ""), "Bearer nope", false, "invalid token"},
		{"missing token", NewAuthenticator("admin-123", ""), "", false, "missing bearer token"},
		{"hash ok", NewAuthenticator("", hash), "Bearer hashed-key", true, ""},
		{"hash wins over plain", NewAuthenticator("admin-123", hash), "Bearer admin-123", false, "invalid token"},
		{"nothing configured", NewAuthenticator("", ""), "Bearer anything", false, "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.auth.Authenticate(tt.header)
			if res.Authenticated != tt.want {
				t.Errorf("Authenticated = %v, want %v", res.Authenticated, tt.want)
			}
			if res.Error != tt.errMsg {
				t.Errorf("Error = %q, want %q", res.Error, tt.errMsg)
			}
		})
	}
}
