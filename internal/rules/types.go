package rules

// FieldType is the value kind of a filterable field. It decides which
// operators apply and how values are encoded.
type FieldType string

const (
	TypeDate    FieldType = "date"
	TypeID      FieldType = "id"
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
)

// Field is a transaction attribute that conditions can match on.
type Field string

const (
	FieldImportedPayee Field = "imported_payee"
	FieldPayee         Field = "payee"
	FieldDate          Field = "date"
	FieldNotes         Field = "notes"
	FieldAmount        Field = "amount"
	FieldAmountInflow  Field = "amountInflow"
	// Stored key keeps its historical spelling.
	FieldAmountOutflow Field = "amountOutfow"
	FieldCategory      Field = "category"
	FieldAccount       Field = "account"
	FieldCleared       Field = "cleared"
)

// Operator is a comparison applied by a condition.
type Operator string

const (
	OpIs        Operator = "is"
	OpIsApprox  Operator = "isapprox"
	OpIsBetween Operator = "isbetween"
	OpContains  Operator = "contains"
	OpOneOf     Operator = "oneOf"
	OpGt        Operator = "gt"
	OpGte       Operator = "gte"
	OpLt        Operator = "lt"
	OpLte       Operator = "lte"

	// Display-only operators. They label boolean values, rule actions and
	// condition groups; no field type accepts them.
	OpTrue         Operator = "true"
	OpFalse        Operator = "false"
	OpSet          Operator = "set"
	OpLinkSchedule Operator = "link-schedule"
	OpAnd          Operator = "and"
	OpOr           Operator = "or"
)

// Subfield refines a base field in the filter editor. It never changes the
// field's type.
type Subfield string

const (
	SubfieldAmountInflow  Subfield = "amount-inflow"
	SubfieldAmountOutflow Subfield = "amount-outflow"
	SubfieldMonth         Subfield = "month"
	SubfieldYear          Subfield = "year"
)

// Options qualifies a condition. Inflow/Outflow only apply to amount,
// Month/Year only to date; each pair is mutually exclusive.
type Options struct {
	Inflow  bool `json:"inflow,omitempty" yaml:"inflow,omitempty"`
	Outflow bool `json:"outflow,omitempty" yaml:"outflow,omitempty"`
	Month   bool `json:"month,omitempty" yaml:"month,omitempty"`
	Year    bool `json:"year,omitempty" yaml:"year,omitempty"`
}

// Condition is a single filter clause. Value holds the display form while a
// condition is edited and the wire form when it is sent or stored.
// Error and InputKey belong to the editor and are dropped by Unparse.
type Condition struct {
	Field    Field     `json:"field" yaml:"field"`
	Op       Operator  `json:"op" yaml:"op"`
	Value    any       `json:"value" yaml:"value"`
	Options  *Options  `json:"options,omitempty" yaml:"options,omitempty"`
	Type     FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Error    string    `json:"error,omitempty" yaml:"error,omitempty"`
	InputKey string    `json:"inputKey,omitempty" yaml:"inputKey,omitempty"`
}

// Typed returns c with Type filled from its field when it is unset.
func (c Condition) Typed() Condition {
	if c.Type == "" {
		if t, ok := TypeOf(c.Field); ok {
			c.Type = t
		}
	}
	return c
}

// Fields lists every known field in declaration order.
func Fields() []Field {
	return []Field{
		FieldImportedPayee,
		FieldPayee,
		FieldDate,
		FieldNotes,
		FieldAmount,
		FieldAmountInflow,
		FieldAmountOutflow,
		FieldCategory,
		FieldAccount,
		FieldCleared,
	}
}

// FieldTypes lists every field type.
func FieldTypes() []FieldType {
	return []FieldType{TypeDate, TypeID, TypeString, TypeNumber, TypeBoolean}
}

// TypeOf returns the type of f. ok is false for unknown fields, which
// callers must treat as an invalid field.
func TypeOf(f Field) (FieldType, bool) {
	switch f {
	case FieldImportedPayee, FieldNotes:
		return TypeString, true
	case FieldPayee, FieldCategory, FieldAccount:
		return TypeID, true
	case FieldDate:
		return TypeDate, true
	case FieldAmount, FieldAmountInflow, FieldAmountOutflow:
		return TypeNumber, true
	case FieldCleared:
		return TypeBoolean, true
	}
	return "", false
}

// OperatorsFor returns the operators valid for t, in display order.
// Unknown types have none.
func OperatorsFor(t FieldType) []Operator {
	switch t {
	case TypeDate:
		return []Operator{OpIs, OpIsApprox, OpGt, OpGte, OpLt, OpLte}
	case TypeID, TypeString:
		return []Operator{OpIs, OpContains, OpOneOf}
	case TypeNumber:
		return []Operator{OpIs, OpIsApprox, OpIsBetween, OpGt, OpGte, OpLt, OpLte}
	case TypeBoolean:
		return []Operator{OpIs}
	}
	return nil
}

// Nullable reports whether conditions on t may carry a null value.
func Nullable(t FieldType) bool {
	return t == TypeID
}

// OperatorsForSubfield returns the operators offered for field while
// sub is selected. Month and year only support equality.
func OperatorsForSubfield(field Field, sub Subfield) []Operator {
	t, ok := TypeOf(field)
	if !ok {
		return nil
	}
	if sub == SubfieldMonth || sub == SubfieldYear {
		return []Operator{OpIs}
	}
	return OperatorsFor(t)
}

// AllowsOperator reports whether op is valid for t.
func AllowsOperator(t FieldType, op Operator) bool {
	for _, o := range OperatorsFor(t) {
		if o == op {
			return true
		}
	}
	return false
}
