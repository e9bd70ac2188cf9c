package listing

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Amount is an optional number. Valid is false when the value is absent,
// which is a different state from a valid zero.
type Amount struct {
	Value float64
	Valid bool
}

// Some returns a valid amount.
func Some(v float64) Amount {
	return Amount{Value: v, Valid: true}
}

// currencyWords are prefixes/suffixes the generator tends to put around prices.
// Longer forms come first so "Rs." is removed before "Rs".
var currencyWords = []string{"INR", "EUR", "USD", "Rs.", "Rs"}

// CoercePrice turns a price string like "₹1,500" or "1 500 €" into a number.
// Anything that does not reduce to a single finite decimal (ranges, words,
// empty input) yields an absent amount.
func CoercePrice(s string) Amount {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "/-")
	s = strings.TrimSpace(s)
	for _, w := range currencyWords {
		s = strings.TrimSpace(strings.TrimPrefix(s, w))
		s = strings.TrimSpace(strings.TrimSuffix(s, w))
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Sc, r):
			// currency symbol
		case r == ',' || r == '_' || unicode.IsSpace(r):
			// thousands separator
		default:
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return Amount{}
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{}
	}
	return Some(v)
}

// FormatAmount renders a valid amount as the shortest decimal string that
// CoercePrice parses back to the same value. Absent amounts render empty.
func FormatAmount(a Amount) string {
	if !a.Valid {
		return ""
	}
	return strconv.FormatFloat(a.Value, 'f', -1, 64)
}
