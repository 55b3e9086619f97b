package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps filters in a map guarded by an RWMutex. It suits
// development, tests and single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	filters map[uuid.UUID]Filter
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		filters: make(map[uuid.UUID]Filter),
	}
}

// ListFilters returns all filters ordered by name, then ID.
func (m *MemoryStore) ListFilters(ctx context.Context) ([]Filter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Filter, 0, len(m.filters))
	for _, f := range m.filters {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// GetFilter returns a copy of the stored filter.
func (m *MemoryStore) GetFilter(ctx context.Context, id uuid.UUID) (*Filter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.filters[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

// UpsertFilter stores params, assigning a new ID when params.ID is zero.
func (m *MemoryStore) UpsertFilter(ctx context.Context, params UpsertParams) (*Filter, error) {
	op, err := ParseConditionsOp(string(params.ConditionsOp))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	id := params.ID
	created := now
	if id == uuid.Nil {
		id = uuid.New()
	} else if existing, ok := m.filters[id]; ok {
		created = existing.CreatedAt
	}

	f := Filter{
		ID:           id,
		Name:         params.Name,
		ConditionsOp: op,
		Conditions:   ensureConditions(params.Conditions),
		CreatedAt:    created,
		UpdatedAt:    now,
	}
	m.filters[id] = f
	return &f, nil
}

// DeleteFilter removes a filter; missing IDs are ignored.
func (m *MemoryStore) DeleteFilter(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.filters, id)
	return nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
