package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TimurManjosov/ledgerrules/internal/rules"
)

// ErrNotFound is returned when a filter does not exist.
var ErrNotFound = errors.New("filter not found")

// ConditionsOp combines the conditions of a filter.
type ConditionsOp string

const (
	ConditionsAnd ConditionsOp = "and"
	ConditionsOr  ConditionsOp = "or"
)

// ParseConditionsOp accepts "and", "or" or empty (meaning "and").
func ParseConditionsOp(s string) (ConditionsOp, error) {
	switch ConditionsOp(s) {
	case "", ConditionsAnd:
		return ConditionsAnd, nil
	case ConditionsOr:
		return ConditionsOr, nil
	default:
		return "", fmt.Errorf("conditions op must be 'and' or 'or', got %q", s)
	}
}

// Store defines persistence for saved transaction filters.
// Implementations must be safe for concurrent use.
type Store interface {
	// ListFilters returns every saved filter ordered by name.
	ListFilters(ctx context.Context) ([]Filter, error)

	// GetFilter returns the filter with id, or ErrNotFound.
	GetFilter(ctx context.Context, id uuid.UUID) (*Filter, error)

	// UpsertFilter creates a filter (zero ID) or replaces an existing one.
	UpsertFilter(ctx context.Context, params UpsertParams) (*Filter, error)

	// DeleteFilter removes a filter. Deleting a missing filter is not an error.
	DeleteFilter(ctx context.Context, id uuid.UUID) error

	// Close releases any resources held by the store.
	Close() error
}

// Filter is a named, saved list of conditions in wire form.
type Filter struct {
	ID           uuid.UUID         `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	ConditionsOp ConditionsOp      `json:"conditionsOp" yaml:"conditionsOp"`
	Conditions   []rules.Condition `json:"conditions" yaml:"conditions"`
	CreatedAt    time.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt" yaml:"updatedAt"`
}

// UpsertParams contains the parameters for saving a filter.
type UpsertParams struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	ConditionsOp ConditionsOp      `json:"conditionsOp"`
	Conditions   []rules.Condition `json:"conditions"`
}

func ensureConditions(c []rules.Condition) []rules.Condition {
	if c == nil {
		return []rules.Condition{}
	}
	return c
}
