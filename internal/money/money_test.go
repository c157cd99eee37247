package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRemainingAndChange(t *testing.T) {
	cases := []struct {
		total, paid      string
		remaining, change string
	}{
		{"2000", "1200", "800", "0"},
		{"1300", "1300", "0", "0"},
		{"1300", "1500", "0", "200"},
		{"0", "0", "0", "0"},
		{"99.99", "0", "99.99", "0"},
	}
	for _, tc := range cases {
		assert.True(t, Remaining(d(tc.total), d(tc.paid)).Equal(d(tc.remaining)), "remaining %s/%s", tc.total, tc.paid)
		assert.True(t, Change(d(tc.total), d(tc.paid)).Equal(d(tc.change)), "change %s/%s", tc.total, tc.paid)
	}
}

func TestOutstandingUsesEpsilon(t *testing.T) {
	assert.False(t, Outstanding(d("0")))
	assert.False(t, Outstanding(d("0.01")))
	assert.True(t, Outstanding(d("0.02")))
	assert.True(t, Settled(d("0.005")))
	assert.False(t, Settled(d("800")))
}

func TestCollected(t *testing.T) {
	assert.True(t, Collected(d("1300"), d("1500")).Equal(d("1300")))
	assert.True(t, Collected(d("2000"), d("1200")).Equal(d("1200")))
	assert.True(t, Collected(d("0"), d("50")).Equal(d("0")))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1300.00 DA", Format(d("1300"), "DA"))
	assert.Equal(t, "12.50", Format(d("12.5"), ""))
	assert.Equal(t, "0.33", Round2(d("0.333")).StringFixed(2))
}
