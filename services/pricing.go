package services

import (
	"prostore-backend/models"

	"github.com/shopspring/decimal"
)

// PricingPolicy decides shipping and tax for a given items subtotal.
type PricingPolicy interface {
	Shipping(itemsPrice decimal.Decimal) decimal.Decimal
	Tax(itemsPrice decimal.Decimal) decimal.Decimal
}

// StandardPricing charges a flat shipping rate unless the subtotal exceeds
// FreeShippingThreshold, and a proportional tax.
type StandardPricing struct {
	FlatShipping          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultPricing() StandardPricing {
	return StandardPricing{
		FlatShipping:          decimal.NewFromInt(10),
		FreeShippingThreshold: decimal.NewFromInt(100),
		TaxRate:               decimal.RequireFromString("0.15"),
	}
}

func (p StandardPricing) Shipping(itemsPrice decimal.Decimal) decimal.Decimal {
	if itemsPrice.IsZero() || itemsPrice.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShipping
}

func (p StandardPricing) Tax(itemsPrice decimal.Decimal) decimal.Decimal {
	return itemsPrice.Mul(p.TaxRate)
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// applyTotals recomputes every derived total from the cart's items.
func applyTotals(cart *models.Cart, policy PricingPolicy) {
	itemsPrice := decimal.Zero
	for _, item := range cart.Items {
		itemsPrice = itemsPrice.Add(item.Subtotal())
	}
	itemsPrice = round2(itemsPrice)
	shipping := round2(policy.Shipping(itemsPrice))
	tax := round2(policy.Tax(itemsPrice))

	cart.ItemsPrice = itemsPrice
	cart.ShippingPrice = shipping
	cart.TaxPrice = tax
	cart.TotalPrice = itemsPrice.Add(shipping).Add(tax)
}
