package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TimurManjosov/ledgerrules/internal/rules"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transaction_filters (
	id            uuid PRIMARY KEY,
	name          text NOT NULL,
	conditions_op text NOT NULL DEFAULT 'and',
	conditions    jsonb NOT NULL DEFAULT '[]'::jsonb,
	created_at    timestamptz NOT NULL DEFAULT now(),
	updated_at    timestamptz NOT NULL DEFAULT now()
)`

const (
	selectFilterColumns = `SELECT id::text, name, conditions_op, conditions, created_at, updated_at FROM transaction_filters`

	upsertFilterSQL = `
INSERT INTO transaction_filters (id, name, conditions_op, conditions, created_at, updated_at)
VALUES ($1::uuid, $2, $3, $4, $5, $5)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    conditions_op = EXCLUDED.conditions_op,
    conditions = EXCLUDED.conditions,
    updated_at = EXCLUDED.updated_at
RETURNING created_at, updated_at`
)

// PostgresStore persists filters in PostgreSQL with conditions as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the filters table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create transaction_filters table: %w", err)
	}
	return nil
}

// ListFilters returns all filters ordered by name.
func (p *PostgresStore) ListFilters(ctx context.Context) ([]Filter, error) {
	rows, err := p.pool.Query(ctx, selectFilterColumns+` ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	filters := make([]Filter, 0)
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// GetFilter returns a single filter by id.
func (p *PostgresStore) GetFilter(ctx context.Context, id uuid.UUID) (*Filter, error) {
	row := p.pool.QueryRow(ctx, selectFilterColumns+` WHERE id = $1::uuid`, id.String())
	f, err := scanFilter(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// UpsertFilter inserts or replaces a filter.
func (p *PostgresStore) UpsertFilter(ctx context.Context, params UpsertParams) (*Filter, error) {
	op, err := ParseConditionsOp(string(params.ConditionsOp))
	if err != nil {
		return nil, err
	}
	conditions := ensureConditions(params.Conditions)
	conditionsJSON, err := json.Marshal(conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conditions: %w", err)
	}

	id := params.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	f := Filter{ID: id, Name: params.Name, ConditionsOp: op, Conditions: conditions}
	err = p.pool.QueryRow(ctx, upsertFilterSQL, id.String(), params.Name, string(op), conditionsJSON, time.Now().UTC()).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFilter removes a filter by id.
func (p *PostgresStore) DeleteFilter(ctx context.Context, id uuid.UUID) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM transaction_filters WHERE id = $1::uuid`, id.String())
	return err
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func scanFilter(row pgx.Row) (Filter, error) {
	var (
		f          Filter
		id         string
		op         string
		conditions []byte
	)
	if err := row.Scan(&id, &f.Name, &op, &conditions, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return Filter{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Filter{}, fmt.Errorf("invalid filter id %q: %w", id, err)
	}
	f.ID = parsed
	f.ConditionsOp = ConditionsOp(op)

	decoded, err := unmarshalConditions(conditions)
	if err != nil {
		return Filter{}, err
	}
	f.Conditions = decoded
	return f, nil
}

func unmarshalConditions(raw []byte) ([]rules.Condition, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []rules.Condition{}, nil
	}
	var conditions []rules.Condition
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return nil, fmt.Errorf("failed to decode conditions: %w", err)
	}
	return ensureConditions(conditions), nil
}
