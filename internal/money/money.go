// Package money converts between integer minor-unit amounts, decimal amounts
// and locale-formatted currency strings.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NumberFormat describes how amounts are written by the user.
type NumberFormat string

const (
	FormatCommaDot      NumberFormat = "comma-dot"      // 1,000.33
	FormatDotComma      NumberFormat = "dot-comma"      // 1.000,33
	FormatSpaceComma    NumberFormat = "space-comma"    // 1 000,33
	FormatApostropheDot NumberFormat = "apostrophe-dot" // 1'000.33
	FormatCommaDotIn    NumberFormat = "comma-dot-in"   // 1,00,000.33

	DefaultFormat = FormatCommaDot
)

var half = decimal.NewFromFloat(0.5)

// ParseNumberFormat returns the named format, falling back to DefaultFormat
// for unknown names.
func ParseNumberFormat(name string) NumberFormat {
	switch f := NumberFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCommaDot, FormatDotComma, FormatSpaceComma, FormatApostropheDot, FormatCommaDotIn:
		return f
	default:
		return DefaultFormat
	}
}

// DecimalSeparator returns the character the format uses between whole and
// fractional units.
func (f NumberFormat) DecimalSeparator() byte {
	switch f {
	case FormatDotComma, FormatSpaceComma:
		return ','
	default:
		return '.'
	}
}

// IntegerToAmount converts minor units (cents) to a decimal amount.
func IntegerToAmount(n int64) float64 {
	f, _ := decimal.New(n, -2).Float64()
	return f
}

// AmountToInteger converts a decimal amount to minor units, rounding half
// toward positive infinity.
func AmountToInteger(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Add(half).Floor().IntPart()
}

// CurrencyToAmount parses a user-entered currency string. Every character
// other than digits, '-' and the format's decimal separator is dropped, then
// the longest leading number is read. It reports false when no number can be
// read.
func CurrencyToAmount(s string, format NumberFormat) (float64, bool) {
	sep := format.DecimalSeparator()

	var b strings.Builder
	b.Grow(len(s))
	replaced := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c == '-':
			b.WriteByte(c)
		case c == sep:
			if !replaced {
				b.WriteByte('.')
				replaced = true
			} else {
				b.WriteByte(sep)
			}
		}
	}

	lead := leadingNumber(b.String())
	if lead == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(lead)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// leadingNumber returns the longest prefix of s shaped like -?\d*(\.\d*)?
// that contains at least one digit.
func leadingNumber(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	end := i
	if i < len(s) && s[i] == '.' {
		i++
		frac := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			frac++
		}
		if frac > 0 {
			end = i
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	out := s[:end]
	if strings.HasPrefix(out, "-.") {
		out = "-0" + out[1:]
	} else if strings.HasPrefix(out, ".") {
		out = "0" + out
	}
	return out
}
