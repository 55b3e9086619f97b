package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TimurManjosov/ledgerrules/internal/api"
	"github.com/TimurManjosov/ledgerrules/internal/auth"
	"github.com/TimurManjosov/ledgerrules/internal/i18n"
	"github.com/TimurManjosov/ledgerrules/internal/store"
)

// NewTestServer creates an API server over an in-memory store. adminKey is
// accepted as a plain bearer token.
func NewTestServer(t *testing.T, adminKey string) (*api.Server, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	server := api.NewServer(memStore, i18n.NewCatalog(), auth.NewAuthenticator(adminKey, ""), api.Options{})
	return server, memStore
}

// NewHTTPServer starts an httptest server for the API and closes it when the
// test ends.
func NewHTTPServer(t *testing.T, adminKey string) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	server, memStore := NewTestServer(t, adminKey)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, memStore
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// SeedFilters populates the store with test filters.
func SeedFilters(ctx context.Context, st store.Store, filters []store.UpsertParams) ([]store.Filter, error) {
	out := make([]store.Filter, 0, len(filters))
	for _, f := range filters {
		saved, err := st.UpsertFilter(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}
	return out, nil
}
