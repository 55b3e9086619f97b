// Package snapshot renders the localized field catalog used by filter
// editors and caches it per language.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/language"

	"github.com/TimurManjosov/ledgerrules/internal/i18n"
	"github.com/TimurManjosov/ledgerrules/internal/rules"
)

// OperatorView is an operator with its display label.
type OperatorView struct {
	Op    rules.Operator `json:"op" yaml:"op"`
	Label string         `json:"label" yaml:"label"`
}

// SubfieldView is an editor subfield of a field, such as month or
// amount-inflow, with the operators it allows.
type SubfieldView struct {
	Subfield  rules.Subfield `json:"subfield" yaml:"subfield"`
	Label     string         `json:"label" yaml:"label"`
	Operators []OperatorView `json:"operators" yaml:"operators"`
}

// FieldView describes one pickable filter field.
type FieldView struct {
	Field     rules.Field     `json:"field" yaml:"field"`
	Type      rules.FieldType `json:"type" yaml:"type"`
	Label     string          `json:"label" yaml:"label"`
	Nullable  bool            `json:"nullable" yaml:"nullable"`
	Operators []OperatorView  `json:"operators" yaml:"operators"`
	Subfields []SubfieldView  `json:"subfields,omitempty" yaml:"subfields,omitempty"`
}

// Snapshot is the localized field catalog served to filter editors.
type Snapshot struct {
	ETag      string      `json:"etag" yaml:"etag"`
	Language  string      `json:"language" yaml:"language"`
	Fields    []FieldView `json:"fields" yaml:"fields"`
	UpdatedAt time.Time   `json:"updatedAt" yaml:"updatedAt"`
}

// Build renders the catalog for lang using t for every label. The ETag only
// depends on the language and the rendered fields.
func Build(lang language.Tag, t i18n.TranslateFunc) *Snapshot {
	picker := rules.FilterFields(t)
	fields := make([]FieldView, 0, len(picker))
	for _, p := range picker {
		typ, _ := rules.TypeOf(p.Field)
		fields = append(fields, FieldView{
			Field:     p.Field,
			Type:      typ,
			Label:     p.Label,
			Nullable:  rules.Nullable(typ),
			Operators: operatorViews(rules.OperatorsFor(typ), typ, t),
			Subfields: subfieldViews(p.Field, typ, t),
		})
	}

	blob, _ := json.Marshal(struct {
		Language string      `json:"language"`
		Fields   []FieldView `json:"fields"`
	}{lang.String(), fields})
	etag := fmt.Sprintf(`W/"%016x"`, xxhash.Sum64(blob))

	return &Snapshot{ETag: etag, Language: lang.String(), Fields: fields, UpdatedAt: time.Now().UTC()}
}

func operatorViews(ops []rules.Operator, typ rules.FieldType, t i18n.TranslateFunc) []OperatorView {
	out := make([]OperatorView, 0, len(ops))
	for _, op := range ops {
		out = append(out, OperatorView{Op: op, Label: rules.LabelForOperator(op, typ, t)})
	}
	return out
}

func subfieldViews(field rules.Field, typ rules.FieldType, t i18n.TranslateFunc) []SubfieldView {
	var subs []SubfieldView
	add := func(sub rules.Subfield, label string) {
		subs = append(subs, SubfieldView{
			Subfield:  sub,
			Label:     label,
			Operators: operatorViews(rules.OperatorsForSubfield(field, sub), typ, t),
		})
	}

	switch field {
	case rules.FieldAmount:
		add(rules.SubfieldAmountInflow, rules.LabelForField(string(rules.SubfieldAmountInflow), nil, t))
		add(rules.SubfieldAmountOutflow, rules.LabelForField(string(rules.SubfieldAmountOutflow), nil, t))
	case rules.FieldDate:
		add(rules.SubfieldMonth, t("month", "", nil))
		add(rules.SubfieldYear, t("year", "", nil))
	}
	return subs
}

// Cache holds one snapshot per language, built on first use.
type Cache struct {
	catalog *i18n.Catalog
	snaps   sync.Map // language string -> *Snapshot
}

// NewCache creates an empty cache over catalog.
func NewCache(catalog *i18n.Catalog) *Cache {
	return &Cache{catalog: catalog}
}

// Load returns the snapshot for tag, building it if needed.
func (c *Cache) Load(tag language.Tag) *Snapshot {
	key := tag.String()
	if v, ok := c.snaps.Load(key); ok {
		return v.(*Snapshot)
	}
	v, _ := c.snaps.LoadOrStore(key, Build(tag, c.catalog.Translator(tag)))
	return v.(*Snapshot)
}

// Reset drops every cached snapshot. Call it after the catalog changes.
func (c *Cache) Reset() {
	c.snaps.Clear()
}
