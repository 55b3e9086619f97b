package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(http.StatusBadRequest, ErrCodeInvalidID, "Filter ID must be a UUID")

	if resp.Error != "Bad Request" {
		t.Errorf("Expected Error 'Bad Request', got '%s'", resp.Error)
	}
	if resp.Message != "Filter ID must be a UUID" {
		t.Errorf("Expected Message 'Filter ID must be a UUID', got '%s'", resp.Message)
	}
	if resp.Code != ErrCodeInvalidID {
		t.Errorf("Expected Code ErrCodeInvalidID, got '%s'", resp.Code)
	}
}

func TestErrorResponse_WithFields(t *testing.T) {
	fields := map[string]string{
		"name":          "Name is required",
		"conditions[0]": "Value cannot be empty",
	}

	resp := NewErrorResponse(http.StatusBadRequest, ErrCodeValidation, "Validation failed").
		WithFields(fields)

	if len(resp.Fields) != 2 {
		t.Errorf("Expected 2 fields, got %d", len(resp.Fields))
	}
	if resp.Fields["name"] != "Name is required" {
		t.Errorf("Expected field 'name' to be 'Name is required', got '%s'", resp.Fields["name"])
	}
}

func TestErrorResponse_WithRequestID(t *testing.T) {
	resp := NewErrorResponse(http.StatusInternalServerError, ErrCodeInternal, "Internal error").
		WithRequestID("req-123")

	if resp.RequestID != "req-123" {
		t.Errorf("Expected RequestID 'req-123', got '%s'", resp.RequestID)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter, *http.Request)
		wantStatus int
		wantCode   ErrorCode
	}{
		{"validation", func(w http.ResponseWriter, r *http.Request) {
			ValidationError(w, r, "Validation failed", map[string]string{"name": "Name is required"})
		}, http.StatusBadRequest, ErrCodeValidation},
		{"bad request", func(w http.ResponseWriter, r *http.Request) {
			BadRequestError(w, r, ErrCodeInvalidJSON, "Invalid JSON")
		}, http.StatusBadRequest, ErrCodeInvalidJSON},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			UnauthorizedError(w, r, "missing bearer token")
		}, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) {
			ForbiddenError(w, r, "invalid token")
		}, http.StatusForbidden, ErrCodeForbidden},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			NotFoundError(w, r, "Filter not found")
		}, http.StatusNotFound, ErrCodeNotFound},
		{"internal", func(w http.ResponseWriter, r *http.Request) {
			InternalError(w, r, "boom")
		}, http.StatusInternalServerError, ErrCodeInternal},
		{"too large", func(w http.ResponseWriter, r *http.Request) {
			RequestTooLargeError(w, r, "Request body too large")
		}, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge},
		{"rate limited", RateLimitedError, http.StatusTooManyRequests, ErrCodeRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/v1/filters", nil)

			tt.write(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", ct)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestRequestTooLarge(t *testing.T) {
	srv, _ := newTestServer(t)
	big := make([]byte, maxBodyBytes+10)
	for i := range big {
		big[i] = ' '
	}
	body := `{"conditions":[` + string(big) + `]}`

	rr := do(t, srv.Router(), http.MethodPost, "/v1/rules/validate", body, nil)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rr.Code)
	}
}
