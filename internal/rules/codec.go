package rules

import (
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/TimurManjosov/ledgerrules/internal/money"
)

// DeserializeField splits a compound wire field name into its base field
// and options. Names other than amount-inflow and amount-outflow pass
// through with nil options.
func DeserializeField(raw string) (Field, *Options) {
	switch raw {
	case string(SubfieldAmountInflow):
		return FieldAmount, &Options{Inflow: true}
	case string(SubfieldAmountOutflow):
		return FieldAmount, &Options{Outflow: true}
	default:
		return Field(raw), nil
	}
}

// SubfieldFromCondition infers the editor subfield of c. Explicit month and
// year options win; without them a date value of 7 characters is a month
// and one of 4 characters is a year.
func SubfieldFromCondition(c Condition) Subfield {
	switch c.Field {
	case FieldDate:
		if c.Options != nil {
			if c.Options.Month {
				return SubfieldMonth
			}
			if c.Options.Year {
				return SubfieldYear
			}
		}
		if s, ok := c.Value.(string); ok {
			switch utf8.RuneCountInString(s) {
			case 7:
				return SubfieldMonth
			case 4:
				return SubfieldYear
			}
		}
	case FieldAmount:
		if c.Options != nil {
			if c.Options.Inflow {
				return SubfieldAmountInflow
			}
			if c.Options.Outflow {
				return SubfieldAmountOutflow
			}
		}
	}
	return Subfield(c.Field)
}

// SubfieldToOptions maps an editor subfield back to condition options. It
// returns nil when sub adds nothing to field.
func SubfieldToOptions(field Field, sub Subfield) *Options {
	switch field {
	case FieldAmount:
		switch sub {
		case SubfieldAmountInflow:
			return &Options{Inflow: true}
		case SubfieldAmountOutflow:
			return &Options{Outflow: true}
		}
	case FieldDate:
		switch sub {
		case SubfieldMonth:
			return &Options{Month: true}
		case SubfieldYear:
			return &Options{Year: true}
		}
	}
	return nil
}

// ConfigureDefaults returns the condition the editor starts from when a
// field is picked: the type's first operator, and true for booleans.
func ConfigureDefaults(rawField string) Condition {
	field, opts := DeserializeField(rawField)
	c := Condition{Field: field, Options: opts}.Typed()
	if ops := OperatorsFor(c.Type); len(ops) > 0 {
		c.Op = ops[0]
	}
	if c.Type == TypeBoolean {
		c.Value = true
	}
	return c
}

// Parse converts a wire condition into display form using its declared
// Type. Amount values become decimal currency except for isbetween, whose
// bounds are kept as they are.
func Parse(c Condition) Condition {
	switch c.Type {
	case TypeNumber:
		if c.Field == FieldAmount && c.Op != OpIsBetween && c.Value != nil {
			if n, ok := toFloat64(c.Value); ok {
				c.Value = money.IntegerToAmount(int64(math.Round(n)))
			}
		}
	case TypeString:
		if c.Value == nil {
			c.Value = ""
		}
	case TypeBoolean:
	default:
		c.Error = ""
	}
	return c
}

// Unparse converts a display condition back to wire form and drops the
// editor-only Error and InputKey.
func Unparse(c Condition) Condition {
	c.Error = ""
	c.InputKey = ""

	switch c.Type {
	case TypeNumber:
		if c.Field == FieldAmount && c.Op != OpIsBetween {
			if c.Value == nil {
				c.Value = int64(0)
			} else if n, ok := toFloat64(c.Value); ok {
				c.Value = money.AmountToInteger(n)
			}
		}
	case TypeString:
		if c.Value == nil {
			c.Value = ""
		}
	case TypeBoolean:
		if c.Value == nil {
			c.Value = false
		}
	}
	return c
}

// MakeValue applies freshly entered input to c and clears its error. Number
// conditions other than isbetween read input as a currency string in format,
// defaulting to 0; every other value is stored as given.
func MakeValue(input any, c Condition, format money.NumberFormat) Condition {
	c.Error = ""
	if c.Type == TypeNumber && c.Op != OpIsBetween {
		c.Value = amountFromInput(input, format)
		return c
	}
	c.Value = input
	return c
}

func amountFromInput(input any, format money.NumberFormat) float64 {
	switch v := input.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return 0
		}
		if amount, ok := money.CurrencyToAmount(v, format); ok {
			return amount
		}
		return 0
	default:
		if n, ok := toFloat64(v); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n
		}
		return 0
	}
}

// ApproxThreshold is the tolerance shown for isapprox: 7.5% of |n|,
// rounded to the nearest integer.
func ApproxThreshold(n float64) int64 {
	return int64(math.Floor(math.Abs(n)*0.075 + 0.5))
}

// SortNumbers orders two isbetween bounds.
func SortNumbers(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
