// Package pricing holds the money arithmetic shared by the cart and checkout views.
package pricing

import "github.com/shopspring/decimal"

// TaxRate is the flat sales tax applied to every order subtotal.
var TaxRate = decimal.RequireFromString("0.0825")

var hundred = decimal.NewFromInt(100)

type Breakdown struct {
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// Compute derives tax, discount and total from subtotal. Tax and discount are
// both taken on the pre-discount subtotal. Nothing is rounded.
func Compute(subtotal, discountPercent decimal.Decimal) Breakdown {
	tax := subtotal.Mul(TaxRate)
	discount := subtotal.Mul(discountPercent).Div(hundred)
	return Breakdown{
		Subtotal:       subtotal,
		Tax:            tax,
		DiscountAmount: discount,
		Total:          subtotal.Add(tax).Sub(discount),
	}
}

func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
