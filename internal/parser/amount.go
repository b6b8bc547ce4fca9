package parser

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts an amount token such as "€5.90", "€1.234,56" or
// "€ 1 234,56" to a float64.
//
// It never fails: unparseable input yields 0 so that one garbled amount
// does not cost the whole transaction.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, currencyMarker, ""))

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		// 12,90
		s = strings.ReplaceAll(s, ",", ".")
	}
	// a lone "." is already a decimal point

	s = strings.ReplaceAll(s, " ", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// Roles is the debit/credit/balance interpretation of a line's amounts.
// A nil field means the role could not be determined.
type Roles struct {
	AmountOut *float64
	AmountIn  *float64
	Balance   *float64
}

// ResolveRoles maps a line's amounts, in order, onto roles:
//
//	[a0, a1]            -> out = |a0|, balance = a1
//	[a0, a1, ..., aN]   -> out = a0 if a0 > 0, in = a1, balance = aN
//
// Fewer than two amounts leave every role empty. With two amounts a credit
// cannot be told apart from a debit, so the first amount is always
// reported as outgoing.
func ResolveRoles(amounts []float64) Roles {
	var r Roles
	if len(amounts) < 2 {
		return r
	}

	r.Balance = ptr(amounts[len(amounts)-1])

	if len(amounts) == 2 {
		r.AmountOut = ptr(math.Abs(amounts[0]))
		return r
	}

	if amounts[0] > 0 {
		r.AmountOut = ptr(amounts[0])
	}
	r.AmountIn = ptr(amounts[1])
	return r
}

func ptr(f float64) *float64 {
	return &f
}
