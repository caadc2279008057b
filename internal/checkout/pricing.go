package checkout

import (
	"github.com/sakashimaa/storefront/internal/selector"
	"github.com/shopspring/decimal"
)

type ShippingTable = selector.ShippingTable

var defaultShipping = map[string]string{
	"standard":  "5.99",
	"express":   "12.99",
	"overnight": "19.99",
}

const defaultTaxRate = "0.08"

type Pricing struct {
	Shipping ShippingTable
	TaxRate  decimal.Decimal
}

// NewPricing starts from the built-in shipping table and applies the overrides on top.
// A non-positive taxRate keeps the default rate.
func NewPricing(taxRate float64, overrides map[string]float64) Pricing {
	table := make(ShippingTable, len(defaultShipping)+len(overrides))
	for method, price := range defaultShipping {
		table[method] = decimal.RequireFromString(price)
	}
	for method, price := range overrides {
		table[method] = decimal.NewFromFloat(price).Round(2)
	}

	rate := decimal.RequireFromString(defaultTaxRate)
	if taxRate > 0 {
		rate = decimal.NewFromFloat(taxRate)
	}

	return Pricing{Shipping: table, TaxRate: rate}
}
