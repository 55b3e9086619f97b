package money

import "testing"

func TestIntegerToAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want float64
	}{
		{0, 0},
		{1234, 12.34},
		{-500, -5},
		{1, 0.01},
		{-99, -0.99},
	}
	for _, tt := range tests {
		if got := IntegerToAmount(tt.in); got != tt.want {
			t.Errorf("IntegerToAmount(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAmountToInteger(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{12.34, 1234},
		{-5, -500},
		{0.015, 2},
		{-12.345, -1234},
		{19.99, 1999},
	}
	for _, tt := range tests {
		if got := AmountToInteger(tt.in); got != tt.want {
			t.Errorf("AmountToInteger(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAmountRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 99, 100, 12345, -98765, 1000000} {
		if got := AmountToInteger(IntegerToAmount(n)); got != n {
			t.Errorf("round trip %d: got %d", n, got)
		}
	}
}

func TestCurrencyToAmount(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		format NumberFormat
		want   float64
		ok     bool
	}{
		{name: "comma-dot thousands", in: "1,000.33", format: FormatCommaDot, want: 1000.33, ok: true},
		{name: "dot-comma thousands", in: "1.000,33", format: FormatDotComma, want: 1000.33, ok: true},
		{name: "space-comma thousands", in: "1 000,33", format: FormatSpaceComma, want: 1000.33, ok: true},
		{name: "apostrophe-dot thousands", in: "1'000.33", format: FormatApostropheDot, want: 1000.33, ok: true},
		{name: "indian grouping", in: "1,00,000.5", format: FormatCommaDotIn, want: 100000.5, ok: true},
		{name: "currency symbol", in: "$25.10", format: FormatCommaDot, want: 25.10, ok: true},
		{name: "negative", in: "-42", format: FormatCommaDot, want: -42, ok: true},
		{name: "leading decimal", in: ".5", format: FormatCommaDot, want: 0.5, ok: true},
		{name: "trailing garbage", in: "12-3", format: FormatCommaDot, want: 12, ok: true},
		{name: "second separator stops", in: "1.2.3", format: FormatCommaDot, want: 1.2, ok: true},
		{name: "empty", in: "", format: FormatCommaDot, ok: false},
		{name: "letters only", in: "abc", format: FormatCommaDot, ok: false},
		{name: "lone minus", in: "-", format: FormatCommaDot, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CurrencyToAmount(tt.in, tt.format)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseNumberFormat(t *testing.T) {
	if got := ParseNumberFormat("Dot-Comma"); got != FormatDotComma {
		t.Errorf("got %q, want %q", got, FormatDotComma)
	}
	if got := ParseNumberFormat("bogus"); got != DefaultFormat {
		t.Errorf("got %q, want default %q", got, DefaultFormat)
	}
	if FormatSpaceComma.DecimalSeparator() != ',' {
		t.Error("space-comma should use ',' as decimal separator")
	}
}
