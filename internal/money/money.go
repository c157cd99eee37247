// Package money holds the settlement arithmetic shared by tickets, sales and debts.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance under which an outstanding amount counts as settled.
var Epsilon = decimal.RequireFromString("0.01")

// Remaining returns max(total - paid, 0).
func Remaining(total, paid decimal.Decimal) decimal.Decimal {
	r := total.Sub(paid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Change returns max(paid - total, 0).
func Change(total, paid decimal.Decimal) decimal.Decimal {
	c := paid.Sub(total)
	if c.IsNegative() {
		return decimal.Zero
	}
	return c
}

// Outstanding reports whether amount is above Epsilon.
func Outstanding(amount decimal.Decimal) bool {
	return amount.GreaterThan(Epsilon)
}

// Settled reports whether amount is at or under Epsilon.
func Settled(amount decimal.Decimal) bool {
	return !Outstanding(amount)
}

// Collected is what actually stays in the till: the amount paid minus the change handed back.
func Collected(total, paid decimal.Decimal) decimal.Decimal {
	return paid.Sub(Change(total, paid))
}

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount with two decimals and the currency suffix, e.g. "1300.00 DA".
func Format(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", d.StringFixed(2), currency)
}
