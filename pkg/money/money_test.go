package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRound(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0.205", "0.21"},
		{"0.2054", "0.21"},
		{"0.2049", "0.20"},
		{"1.005", "1.01"},
		{"-0.005", "-0.01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(d(tt.in)).StringFixed(2), tt.in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "0.21", Percent(d("2.49"), d("8.25")).StringFixed(2))
	assert.Equal(t, "0.65", Percent(d("6.48"), d("10")).StringFixed(2))
	assert.Equal(t, "0.00", Percent(d("1.00"), decimal.Zero).StringFixed(2))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, "0.00", Clamp(d("-1"), d("5")).StringFixed(2))
	assert.Equal(t, "5.00", Clamp(d("7.50"), d("5")).StringFixed(2))
	assert.Equal(t, "3.25", Clamp(d("3.25"), d("5")).StringFixed(2))
}

func TestCent(t *testing.T) {
	assert.Equal(t, "0.01", Cent.StringFixed(2))
}
