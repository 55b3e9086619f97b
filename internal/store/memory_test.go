package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/TimurManjosov/ledgerrules/internal/rules"
)

func TestMemoryStore_UpsertAndGet(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	f, err := st.UpsertFilter(ctx, UpsertParams{
		Name:         "big spends",
		ConditionsOp: ConditionsOr,
		Conditions: []rules.Condition{
			{Field: rules.FieldAmount, Op: rules.OpLt, Value: int64(-10000)},
		},
	})
	if err != nil {
		t.Fatalf("UpsertFilter failed: %v", err)
	}
	if f.ID == uuid.Nil {
		t.Fatal("Expected generated ID")
	}

	got, err := st.GetFilter(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetFilter failed: %v", err)
	}
	if got.Name != "big spends" {
		t.Errorf("Expected name 'big spends', got '%s'", got.Name)
	}
	if got.ConditionsOp != ConditionsOr {
		t.Errorf("Expected conditions op 'or', got '%s'", got.ConditionsOp)
	}
	if len(got.Conditions) != 1 || got.Conditions[0].Value != int64(-10000) {
		t.Errorf("Unexpected conditions: %+v", got.Conditions)
	}
}

func TestMemoryStore_DefaultsAndValidation(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	f, err := st.UpsertFilter(ctx, UpsertParams{Name: "empty"})
	if err != nil {
		t.Fatalf("UpsertFilter failed: %v", err)
	}
	if f.ConditionsOp != ConditionsAnd {
		t.Errorf("Expected default op 'and', got '%s'", f.ConditionsOp)
	}
	if f.Conditions == nil {
		t.Error("Expected non-nil conditions slice")
	}

	if _, err := st.UpsertFilter(ctx, UpsertParams{Name: "bad", ConditionsOp: "xor"}); err == nil {
		t.Error("Expected error for invalid conditions op")
	}
}

func TestMemoryStore_UpdateKeepsCreatedAt(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	first, err := st.UpsertFilter(ctx, UpsertParams{Name: "v1"})
	if err != nil {
		t.Fatalf("UpsertFilter failed: %v", err)
	}
	second, err := st.UpsertFilter(ctx, UpsertParams{ID: first.ID, Name: "v2"})
	if err != nil {
		t.Fatalf("UpsertFilter update failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("ID changed on update")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards")
	}

	all, _ := st.ListFilters(ctx)
	if len(all) != 1 || all[0].Name != "v2" {
		t.Errorf("Expected single updated filter, got %+v", all)
	}
}

func TestMemoryStore_ListOrderedByName(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	for _, name := range []string{"rent", "coffee", "payroll"} {
		if _, err := st.UpsertFilter(ctx, UpsertParams{Name: name}); err != nil {
			t.Fatalf("UpsertFilter failed: %v", err)
		}
	}

	filters, err := st.ListFilters(ctx)
	if err != nil {
		t.Fatalf("ListFilters failed: %v", err)
	}
	want := []string{"coffee", "payroll", "rent"}
	for i, name := range want {
		if filters[i].Name != name {
			t.Errorf("[%d] = %q, want %q", i, filters[i].Name, name)
		}
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	f, _ := st.UpsertFilter(ctx, UpsertParams{Name: "to delete"})
	if err := st.DeleteFilter(ctx, f.ID); err != nil {
		t.Fatalf("DeleteFilter failed: %v", err)
	}
	if _, err := st.GetFilter(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// Idempotent
	if err := st.DeleteFilter(ctx, uuid.New()); err != nil {
		t.Errorf("Deleting a missing filter should not fail: %v", err)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = st.UpsertFilter(ctx, UpsertParams{Name: "concurrent"})
		}()
		go func() {
			defer wg.Done()
			_, _ = st.ListFilters(ctx)
		}()
	}
	wg.Wait()

	filters, _ := st.ListFilters(ctx)
	if len(filters) != 50 {
		t.Errorf("Expected 50 filters, got %d", len(filters))
	}
}

func TestUnmarshalConditions(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		wantLen int
		wantErr bool
	}{
		{name: "nil", raw: nil},
		{name: "null", raw: []byte("null")},
		{name: "empty array", raw: []byte("[]")},
		{name: "one condition", raw: []byte(`[{"field":"payee","op":"is","value":"p1"}]`), wantLen: 1},
		{name: "invalid", raw: []byte("{"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unmarshalConditions(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || len(got) != tt.wantLen {
				t.Fatalf("got %v, want len %d", got, tt.wantLen)
			}
		})
	}
}

func TestParseConditionsOp(t *testing.T) {
	if op, err := ParseConditionsOp(""); err != nil || op != ConditionsAnd {
		t.Errorf("empty: got %q, %v", op, err)
	}
	if op, err := ParseConditionsOp("or"); err != nil || op != ConditionsOr {
		t.Errorf("or: got %q, %v", op, err)
	}
	if _, err := ParseConditionsOp("AND"); err == nil {
		t.Error("expected error for 'AND'")
	}
}
