package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCondition is wrapped by every ConditionError.
var ErrInvalidCondition = errors.New("invalid condition")

// ConditionError reports why the condition at Index was rejected.
type ConditionError struct {
	Index int
	Field Field
	Kind  ErrorKind
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("%s: condition[%d] field %q: %s", ErrInvalidCondition, e.Index, e.Field, e.Kind)
}

func (e *ConditionError) Unwrap() error { return ErrInvalidCondition }

// ValidateRequest is the rule-validate payload. Actions are accepted for
// shape compatibility and not inspected.
type ValidateRequest struct {
	Conditions []Condition       `json:"conditions"`
	Actions    []json.RawMessage `json:"actions"`
}

// ValidateResult carries the normalized conditions and one error kind per
// condition, aligned with the request.
type ValidateResult struct {
	Conditions      []Condition `json:"conditions"`
	ConditionErrors []ErrorKind `json:"conditionErrors"`
}

// Valid reports whether no condition was rejected.
func (r ValidateResult) Valid() bool {
	for _, k := range r.ConditionErrors {
		if k != ErrKindNone {
			return false
		}
	}
	return true
}

// Err returns the first rejection as a *ConditionError, or nil.
func (r ValidateResult) Err() error {
	for i, k := range r.ConditionErrors {
		if k != ErrKindNone {
			return &ConditionError{Index: i, Field: r.Conditions[i].Field, Kind: k}
		}
	}
	return nil
}

// Validate checks every wire condition of req. It is pure: the request is
// not mutated.
func Validate(req ValidateRequest) ValidateResult {
	res := ValidateResult{
		Conditions:      make([]Condition, len(req.Conditions)),
		ConditionErrors: make([]ErrorKind, len(req.Conditions)),
	}
	for i, c := range req.Conditions {
		res.Conditions[i], res.ConditionErrors[i] = ValidateCondition(c)
	}
	return res
}

// ValidateConditions validates conds and returns their normalized form, or
// the first *ConditionError.
func ValidateConditions(conds []Condition) ([]Condition, error) {
	res := Validate(ValidateRequest{Conditions: conds})
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Conditions, nil
}

// ValidateCondition checks a single wire condition. Month and year date
// values are normalized to yyyy-MM and yyyy in the returned condition.
func ValidateCondition(c Condition) (Condition, ErrorKind) {
	t, ok := TypeOf(c.Field)
	if !ok || (c.Type != "" && c.Type != t) {
		return c, ErrKindInvalidField
	}
	c.Type = t

	if kind := validateOptions(c); kind != ErrKindNone {
		return c, kind
	}
	if !AllowsOperator(t, c.Op) {
		return c, ErrKindInvalidField
	}

	if c.Value == nil {
		if Nullable(t) && c.Op == OpIs {
			return c, ErrKindNone
		}
		return c, ErrKindNoNull
	}

	if c.Op == OpOneOf {
		return c, validateList(c.Value)
	}

	switch t {
	case TypeString, TypeID:
		s, ok := c.Value.(string)
		if !ok {
			return c, ErrKindInvalidValue
		}
		if s == "" && (c.Op == OpContains || t == TypeID) {
			return c, ErrKindNoEmptyString
		}
	case TypeNumber:
		if c.Op == OpIsBetween {
			bounds, kind := validateBetween(c.Value)
			if kind == ErrKindNone {
				c.Value = bounds
			}
			return c, kind
		}
		if _, ok := toFloat64(c.Value); !ok {
			return c, ErrKindNotNumber
		}
	case TypeDate:
		return normalizeDate(c)
	case TypeBoolean:
		if _, ok := c.Value.(bool); !ok {
			return c, ErrKindInvalidValue
		}
	}
	return c, ErrKindNone
}

func validateOptions(c Condition) ErrorKind {
	o := c.Options
	if o == nil {
		return ErrKindNone
	}
	if (o.Inflow || o.Outflow) && (c.Field != FieldAmount || (o.Inflow && o.Outflow)) {
		return ErrKindInvalidField
	}
	if (o.Month || o.Year) && (c.Field != FieldDate || (o.Month && o.Year) || c.Op != OpIs) {
		return ErrKindInvalidField
	}
	return ErrKindNone
}

func validateList(v any) ErrorKind {
	switch list := v.(type) {
	case []any:
		if len(list) == 0 {
			return ErrKindNoEmptyArray
		}
	case []string:
		if len(list) == 0 {
			return ErrKindNoEmptyArray
		}
	default:
		return ErrKindInvalidValue
	}
	return ErrKindNone
}

// validateBetween returns a fresh bounds map with num1 <= num2.
func validateBetween(v any) (map[string]any, ErrorKind) {
	bounds, ok := v.(map[string]any)
	if !ok {
		return nil, ErrKindNotNumber
	}
	lo, ok := toFloat64(bounds["num1"])
	if !ok {
		return nil, ErrKindNotNumber
	}
	hi, ok := toFloat64(bounds["num2"])
	if !ok {
		return nil, ErrKindNotNumber
	}
	lo, hi = SortNumbers(lo, hi)
	return map[string]any{"num1": lo, "num2": hi}, ErrKindNone
}

var (
	monthLayouts = []string{"2006-01", "2006/01", "01/2006", "01-2006", "Jan 2006", "January 2006"}
	dateLayouts  = []string{"2006-01-02", "2006-01", "2006"}
)

func normalizeDate(c Condition) (Condition, ErrorKind) {
	s, ok := c.Value.(string)
	if !ok {
		return c, ErrKindDateFormat
	}

	switch {
	case c.Options != nil && c.Options.Month:
		d, ok := parseAny(s, monthLayouts)
		if !ok {
			return c, ErrKindDateFormat
		}
		c.Value = d.Format("2006-01")
	case c.Options != nil && c.Options.Year:
		d, ok := parseAny(s, []string{"2006"})
		if !ok {
			return c, ErrKindDateFormat
		}
		c.Value = d.Format("2006")
	default:
		if _, ok := parseAny(s, dateLayouts); !ok {
			return c, ErrKindDateFormat
		}
	}
	return c, ErrKindNone
}

func parseAny(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
