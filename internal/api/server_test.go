package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TimurManjosov/ledgerrules/internal/auth"
	"github.com/TimurManjosov/ledgerrules/internal/i18n"
	"github.com/TimurManjosov/ledgerrules/internal/rules"
	"github.com/TimurManjosov/ledgerrules/internal/snapshot"
	"github.com/TimurManjosov/ledgerrules/internal/store"
)

const testAdminKey = "test-key"

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewServer(st, i18n.NewCatalog(), auth.NewAuthenticator(testAdminKey, ""), Options{}), st
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if buf.Len() > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := do(t, srv.Router(), http.MethodGet, "/healthz", nil, nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("Expected body 'ok', got %s", rr.Body.String())
	}
}

// ===== Field catalog =====

func TestFieldsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := do(t, srv.Router(), http.MethodGet, "/v1/fields", nil, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Error("Expected ETag header to be set")
	}

	snap := decodeBody[snapshot.Snapshot](t, rr)
	if snap.Language != "en" {
		t.Errorf("Expected language en, got %q", snap.Language)
	}
	if snap.ETag != etag {
		t.Errorf("Body etag %q does not match header %q", snap.ETag, etag)
	}
	if len(snap.Fields) == 0 || snap.Fields[0].Field != rules.FieldDate {
		t.Errorf("Expected date first, got %+v", snap.Fields)
	}
}

func TestFieldsEndpoint_NotModified(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	first := do(t, h, http.MethodGet, "/v1/fields", nil, nil)
	etag := first.Header().Get("ETag")

	rr := do(t, h, http.MethodGet, "/v1/fields", nil, map[string]string{"If-None-Match": etag})
	if rr.Code != http.StatusNotModified {
		t.Errorf("Expected status 304, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/v1/fields", nil, map[string]string{"If-None-Match": `W/"stale"`})
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 for stale ETag, got %d", rr.Code)
	}
}

func TestFieldsEndpoint_Localized(t *testing.T) {
	cat := i18n.NewCatalog()
	if err := cat.LoadYAML([]byte("fr:\n  payee: bénéficiaire\n")); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	srv := NewServer(store.NewMemoryStore(), cat, nil, Options{})
	h := srv.Router()

	en := do(t, h, http.MethodGet, "/v1/fields", nil, nil)
	fr := do(t, h, http.MethodGet, "/v1/fields", nil, map[string]string{"Accept-Language": "fr-FR,fr;q=0.9"})

	if fr.Header().Get("Content-Language") != "fr" {
		t.Errorf("Expected Content-Language fr, got %q", fr.Header().Get("Content-Language"))
	}
	if en.Header().Get("ETag") == fr.Header().Get("ETag") {
		t.Error("Expected different ETags per language")
	}

	snap := decodeBody[snapshot.Snapshot](t, fr)
	for _, f := range snap.Fields {
		if f.Field == rules.FieldPayee && f.Label != "bénéficiaire" {
			t.Errorf("Expected localized payee label, got %q", f.Label)
		}
	}
}

func TestReloadCatalog(t *testing.T) {
	cat := i18n.NewCatalog()
	srv := NewServer(store.NewMemoryStore(), cat, nil, Options{})
	h := srv.Router()

	before := do(t, h, http.MethodGet, "/v1/fields", nil, nil).Header().Get("ETag")
	if err := cat.LoadYAML([]byte("en:\n  payee: beneficiary\n")); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	srv.ReloadCatalog()
	after := do(t, h, http.MethodGet, "/v1/fields", nil, nil).Header().Get("ETag")

	if before == after {
		t.Error("Expected ETag to change after reload")
	}
}

// ===== Middleware =====

func TestRateLimit(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), nil, nil, Options{RateLimitPerIP: 2})
	h := srv.Router()

	for i := 0; i < 2; i++ {
		if rr := do(t, h, http.MethodGet, "/healthz", nil, nil); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}

	rr := do(t, h, http.MethodGet, "/healthz", nil, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", rr.Code)
	}
	errResp := decodeBody[ErrorResponse](t, rr)
	if errResp.Code != ErrCodeRateLimited {
		t.Errorf("Expected code RATE_LIMITED, got %s", errResp.Code)
	}
}

func TestAuthAdmin(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	body := map[string]any{"name": "x", "conditions": []any{}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusForbidden},
		{"valid token", "Bearer " + testAdminKey, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rr := do(t, h, http.MethodPost, "/v1/filters", body, headers)
			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAuthAdmin_HashedKey(t *testing.T) {
	hash, err := auth.HashAPIKey("hashed-secret")
	if err != nil {
		t.Fatalf("HashAPIKey: %v", err)
	}
	srv := NewServer(store.NewMemoryStore(), nil, auth.NewAuthenticator("", hash), Options{})

	rr := do(t, srv.Router(), http.MethodPost, "/v1/filters",
		map[string]any{"name": "x"}, map[string]string{"Authorization": "Bearer hashed-secret"})
	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAuthAdmin_NotConfigured(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), nil, nil, Options{})
	rr := do(t, srv.Router(), http.MethodDelete, "/v1/filters/"+"00000000-0000-0000-0000-000000000001",
		nil, map[string]string{"Authorization": "Bearer anything"})
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rr.Code)
	}
}
