package store

import (
	"context"
	"fmt"

	mydb "github.com/TimurManjosov/ledgerrules/internal/db"
)

// NewStore creates a store for storeType ("memory" or "postgres"). The
// postgres store creates its table on start.
func NewStore(ctx context.Context, storeType, dbDSN string) (Store, error) {
	switch storeType {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres":
		pool, err := mydb.NewPool(ctx, dbDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		ps := NewPostgresStore(pool)
		if err := ps.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return ps, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
