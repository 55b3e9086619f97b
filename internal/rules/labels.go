package rules

import (
	"encoding/json"

	"github.com/TimurManjosov/ledgerrules/internal/i18n"
)

// ErrorKind is a validation failure reported for one condition. The empty
// kind means the condition is valid.
type ErrorKind string

const (
	ErrKindNone          ErrorKind = ""
	ErrKindDateFormat    ErrorKind = "date-format"
	ErrKindNoNull        ErrorKind = "no-null"
	ErrKindNoEmptyArray  ErrorKind = "no-empty-array"
	ErrKindNoEmptyString ErrorKind = "no-empty-string"
	ErrKindNotNumber     ErrorKind = "not-number"
	ErrKindInvalidField  ErrorKind = "invalid-field"
	// ErrKindInvalidValue has no dedicated message and renders as the
	// generic internal error.
	ErrKindInvalidValue ErrorKind = "invalid-value"
)

// MarshalJSON encodes ErrKindNone as null.
func (k ErrorKind) MarshalJSON() ([]byte, error) {
	if k == ErrKindNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(k))
}

// UnmarshalJSON decodes null as ErrKindNone.
func (k *ErrorKind) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = ErrKindNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = ErrorKind(s)
	return nil
}

// FieldLabel pairs a field picker entry with its label.
type FieldLabel struct {
	Field Field  `json:"field"`
	Label string `json:"label"`
}

// FilterFields returns the fields offered by the filter picker, in order.
func FilterFields(t i18n.TranslateFunc) []FieldLabel {
	fields := []Field{FieldDate, FieldAccount, FieldPayee, FieldNotes, FieldCategory, FieldAmount, FieldCleared}
	out := make([]FieldLabel, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldLabel{Field: f, Label: LabelForField(string(f), nil, t)})
	}
	return out
}

// LabelForField returns the display label of a field. Amount honors the
// inflow/outflow options. Unknown fields are returned unchanged.
func LabelForField(field string, opts *Options, t i18n.TranslateFunc) string {
	if opts == nil {
		opts = &Options{}
	}

	switch field {
	case string(FieldImportedPayee):
		return t("imported payee", "", nil)
	case string(FieldAccount):
		return t("general.accountSmallCase", "account", nil)
	case string(FieldCategory):
		return t("category", "", nil)
	case string(FieldDate):
		return t("date", "", nil)
	case string(FieldPayee):
		return t("payee", "", nil)
	case string(FieldNotes):
		return t("notesSmallCase", "notes", nil)
	case string(FieldAmount):
		if opts.Inflow {
			return t("amount (inflow)", "", nil)
		} else if opts.Outflow {
			return t("amount (outflow)", "", nil)
		}
		return t("amount", "", nil)
	case string(SubfieldAmountInflow):
		return t("amount (inflow)", "", nil)
	case string(SubfieldAmountOutflow):
		return t("amount (outflow)", "", nil)
	default:
		return field
	}
}

// LabelForOperator returns the display label of op. Ordering operators read
// as before/after for dates. Unknown operators yield "".
func LabelForOperator(op Operator, typ FieldType, t i18n.TranslateFunc) string {
	tr := func(key string) string { return t(key, "", nil) }

	switch op {
	case OpOneOf:
		return tr("one of")
	case OpIs:
		return tr("is")
	case OpIsApprox:
		return tr("is approx")
	case OpIsBetween:
		return tr("is between")
	case OpContains:
		return tr("contains")
	case OpGt:
		if typ == TypeDate {
			return tr("is after")
		}
		return tr("is greater than")
	case OpGte:
		if typ == TypeDate {
			return tr("is after or equals")
		}
		return tr("is greater than or equals")
	case OpLt:
		if typ == TypeDate {
			return tr("is before")
		}
		return tr("is less than")
	case OpLte:
		if typ == TypeDate {
			return tr("is before or equals")
		}
		return tr("is less than or equals")
	case OpTrue:
		return tr("is true")
	case OpFalse:
		return tr("is false")
	case OpSet:
		return tr("set")
	case OpLinkSchedule:
		return tr("link schedule")
	case OpAnd:
		return tr("and")
	case OpOr:
		return tr("or")
	default:
		return ""
	}
}

// FieldErrorMessage returns the user-facing text for a validation kind.
// Unknown kinds get the generic support message.
func FieldErrorMessage(kind ErrorKind, t i18n.TranslateFunc) string {
	switch kind {
	case ErrKindDateFormat:
		return t("Invalid date format", "", nil)
	case ErrKindNoNull, ErrKindNoEmptyArray, ErrKindNoEmptyString:
		return t("Value cannot be empty", "", nil)
	case ErrKindNotNumber:
		return t("Value must be a number", "", nil)
	case ErrKindInvalidField:
		return t("Please choose a valid field for this type of rule", "", nil)
	default:
		return t(
			"internalErrorContactSupport",
			"Internal error, sorry! Please get in touch https://actualbudget.github.io/docs/Contact/ for support",
			nil,
		)
	}
}
