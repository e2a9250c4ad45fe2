package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeWithDiscount(t *testing.T) {
	b := Compute(d("100"), d("10"))

	assert.True(t, b.Tax.Equal(d("8.25")), "tax %s", b.Tax)
	assert.True(t, b.DiscountAmount.Equal(d("10")), "discount %s", b.DiscountAmount)
	assert.True(t, b.Total.Equal(d("98.25")), "total %s", b.Total)
}

func TestComputeWithoutDiscount(t *testing.T) {
	b := Compute(d("59.99"), decimal.Zero)

	assert.True(t, b.Tax.Equal(d("4.949175")), "tax %s", b.Tax)
	assert.True(t, b.DiscountAmount.IsZero())
	assert.True(t, b.Total.Equal(d("64.939175")), "total %s", b.Total)
	assert.Equal(t, "64.94", Money(b.Total))
}

func TestComputeEmpty(t *testing.T) {
	b := Compute(decimal.Zero, d("25"))
	assert.True(t, b.Total.IsZero())
}

func TestLineTotal(t *testing.T) {
	assert.True(t, LineTotal(d("24.99"), 3).Equal(d("74.97")))
}
