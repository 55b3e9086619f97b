package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TimurManjosov/ledgerrules/internal/rules"
)

func TestParseConditions(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantLen   int
		wantField rules.Field
		wantErr   bool
	}{
		{name: "json single", doc: `{"field":"amount","op":"is","value":1234}`, wantLen: 1, wantField: rules.FieldAmount},
		{name: "json list", doc: `[{"field":"notes","op":"is","value":"a"},{"field":"payee","op":"is","value":null}]`, wantLen: 2, wantField: rules.FieldNotes},
		{name: "json wrapper", doc: `{"conditions":[{"field":"date","op":"is","value":"2024"}],"actions":[]}`, wantLen: 1, wantField: rules.FieldDate},
		{name: "yaml list", doc: "- field: amount\n  op: isbetween\n  value: {num1: 1, num2: 5}\n", wantLen: 1, wantField: rules.FieldAmount},
		{name: "yaml options", doc: "field: date\nop: is\nvalue: \"2024-05\"\noptions:\n  month: true\n", wantLen: 1, wantField: rules.FieldDate},
		{name: "scalar", doc: `42`, wantErr: true},
		{name: "empty", doc: ``, wantErr: true},
		{name: "broken", doc: `{"field": [`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConditions([]byte(tt.doc))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConditions: %v", err)
			}
			if len(got) != tt.wantLen || got[0].Field != tt.wantField {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestParseConditions_Values(t *testing.T) {
	got, err := ParseConditions([]byte("field: date\nop: is\nvalue: \"2024-05\"\noptions:\n  month: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Options == nil || !got[0].Options.Month {
		t.Errorf("Expected month option, got %+v", got[0].Options)
	}

	got, _ = ParseConditions([]byte(`[{"field":"payee","op":"is","value":null}]`))
	if got[0].Value != nil {
		t.Errorf("Expected nil value, got %#v", got[0].Value)
	}
}

func TestReadConditions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conds.yaml")
	if err := os.WriteFile(path, []byte("- field: notes\n  op: contains\n  value: rent\n"), 0600); err != nil {
		t.Fatal(err)
	}

	fromFile, err := ReadConditions(path, nil)
	if err != nil || len(fromFile) != 1 {
		t.Fatalf("ReadConditions(file) = %v, %v", fromFile, err)
	}

	fromStdin, err := ReadConditions("-", strings.NewReader(`{"field":"cleared","op":"is","value":true}`))
	if err != nil || len(fromStdin) != 1 || fromStdin[0].Value != true {
		t.Fatalf("ReadConditions(stdin) = %v, %v", fromStdin, err)
	}

	if _, err := ReadConditions(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Error("Expected error for missing file")
	}
}
