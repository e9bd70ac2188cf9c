// Package profit derives a resale profit from an estimated market value and
// the seller's cost.
package profit

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/raine/reseller-lens/internal/listing"
)

var (
	ErrInvalidCost  = errors.New("cost is not a number")
	ErrNegativeCost = errors.New("cost must not be negative")
)

// Summary is the financial view of one listing. Profit is valid only when
// MarketValue is valid; an absent profit is never reported as zero.
type Summary struct {
	Cost        float64
	MarketValue listing.Amount
	Profit      listing.Amount
}

// Compute returns the summary for a cost and an optional market value.
// The caller must ensure cost >= 0.
func Compute(cost float64, marketValue listing.Amount) Summary {
	s := Summary{Cost: cost, MarketValue: marketValue}
	if marketValue.Valid {
		s.Profit = listing.Some(marketValue.Value - cost)
	}
	return s
}

// Favorable reports whether the profit is present, finite and strictly positive.
func (s Summary) Favorable() bool {
	if !s.Profit.Valid {
		return false
	}
	p := s.Profit.Value
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}

// ParseCost validates user input for a cost. It accepts the same notations as
// price coercion ("₹500", "1,200").
func ParseCost(s string) (float64, error) {
	a := listing.CoercePrice(s)
	if !a.Valid {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCost, strings.TrimSpace(s))
	}
	if a.Value < 0 {
		return 0, ErrNegativeCost
	}
	return a.Value, nil
}

// FormatMoney rounds for display only.
func FormatMoney(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}

// FormatSummary renders the summary as display lines.
func FormatSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cost: %s\n", FormatMoney(s.Cost))
	if !s.MarketValue.Valid {
		b.WriteString("Market value: unknown\nProfit: unknown")
		return b.String()
	}
	fmt.Fprintf(&b, "Market value: %s\n", FormatMoney(s.MarketValue.Value))
	fmt.Fprintf(&b, "Profit: %s", FormatMoney(s.Profit.Value))
	return b.String()
}
