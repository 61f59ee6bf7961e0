package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FinalPrice applies a percentage discount to price, rounded to two decimals
func FinalPrice(price, discountPercentage decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(discountPercentage)).Div(hundred).Round(2)
}

// LineTotal is the total price of quantity units at unitPrice
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Derive fills FinalPrice when the backend did not supply it.
func (p *Product) Derive() {
	if p.FinalPrice.IsZero() {
		p.FinalPrice = FinalPrice(p.Price, p.DiscountPercentage)
	}
}

// HasDiscount reports whether the product is sold below its list price
func (p *Product) HasDiscount() bool {
	return p.DiscountPercentage.IsPositive()
}

// Derive fills TotalPrice when the backend did not supply it.
func (i *OrderItem) Derive() {
	if i.TotalPrice.IsZero() {
		i.TotalPrice = LineTotal(i.UnitPrice, i.Quantity)
	}
}
