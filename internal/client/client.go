package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TimurManjosov/ledgerrules/internal/rules"
	"github.com/TimurManjosov/ledgerrules/internal/snapshot"
	"github.com/TimurManjosov/ledgerrules/internal/store"
)

// Client is an HTTP client for the ledgerrules API
type Client struct {
	BaseURL    string
	APIKey     string
	Language   string // sent as Accept-Language when set
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields"`
	RequestID  string            `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	for field, fieldMsg := range e.Fields {
		msg += fmt.Sprintf("\n  %s: %s", field, fieldMsg)
	}
	return msg
}

// ValidateResponse mirrors the rule validation result.
type ValidateResponse struct {
	Valid           bool              `json:"valid"`
	Conditions      []rules.Condition `json:"conditions"`
	ConditionErrors []rules.ErrorKind `json:"conditionErrors"`
	Messages        []string          `json:"messages"`
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Fields returns the field catalog.
func (c *Client) Fields(ctx context.Context) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	if err := c.do(ctx, http.MethodGet, "/v1/fields", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate runs rule validation for conds on the server.
func (c *Client) Validate(ctx context.Context, conds []rules.Condition) (*ValidateResponse, error) {
	req := rules.ValidateRequest{Conditions: conds, Actions: []json.RawMessage{}}
	var resp ValidateResponse
	if err := c.do(ctx, http.MethodPost, "/v1/rules/validate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFilters retrieves all saved filters
func (c *Client) ListFilters(ctx context.Context) ([]store.Filter, error) {
	var result struct {
		Filters []store.Filter `json:"filters"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/filters", nil, &result); err != nil {
		return nil, err
	}
	return result.Filters, nil
}

// GetFilter retrieves a single filter. A missing filter yields an error
// wrapping store.ErrNotFound.
func (c *Client) GetFilter(ctx context.Context, id uuid.UUID) (*store.Filter, error) {
	var f store.Filter
	err := c.do(ctx, http.MethodGet, "/v1/filters/"+id.String(), nil, &f)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

type upsertRequest struct {
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name"`
	ConditionsOp string            `json:"conditionsOp"`
	Conditions   []rules.Condition `json:"conditions"`
}

// UpsertFilter creates (zero ID) or replaces a filter
func (c *Client) UpsertFilter(ctx context.Context, params store.UpsertParams) (*store.Filter, error) {
	req := upsertRequest{
		Name:         params.Name,
		ConditionsOp: string(params.ConditionsOp),
		Conditions:   params.Conditions,
	}
	if params.ID != uuid.Nil {
		req.ID = params.ID.String()
	}
	var f store.Filter
	if err := c.do(ctx, http.MethodPost, "/v1/filters", req, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFilter deletes a filter
func (c *Client) DeleteFilter(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/v1/filters/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.Language != "" {
		req.Header.Set("Accept-Language", c.Language)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(bodyBytes, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(bodyBytes))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
