package selector

import (
	"sort"

	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func ItemCount(cart domain.Cart) int {
	count := 0
	for _, item := range cart.Items {
		count += item.Quantity
	}
	return count
}

// DisplaySubtotal prefers the backend subtotal and falls back to the sum of line totals.
func DisplaySubtotal(cart domain.Cart) decimal.Decimal {
	if cart.Subtotal != nil {
		return *cart.Subtotal
	}

	subtotal := decimal.Zero
	for _, item := range cart.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// CalculateDiscount returns the rounded percentage saved against the compare-at price, or nil
// when there is no saving to show.
func CalculateDiscount(price, comparePrice *decimal.Decimal) *int {
	if price == nil || comparePrice == nil || !comparePrice.GreaterThan(*price) || !comparePrice.IsPositive() {
		return nil
	}

	pct := int(comparePrice.Sub(*price).Mul(hundred).Div(*comparePrice).Round(0).IntPart())
	return &pct
}

// ShippingTable maps a shipping method id to its flat price.
type ShippingTable map[string]decimal.Decimal

func (t ShippingTable) Cost(method string) (decimal.Decimal, bool) {
	cost, ok := t[method]
	return cost, ok
}

func (t ShippingTable) Methods() []string {
	out := make([]string, 0, len(t))
	for m := range t {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

type Summary struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// CartSummary computes display totals. Tax is taken on the subtotal; the order total the backend
// returns after creation is the binding one.
func CartSummary(cart domain.Cart, shippingMethod string, table ShippingTable, taxRate decimal.Decimal) Summary {
	subtotal := DisplaySubtotal(cart)

	discount := decimal.Zero
	if cart.Discount != nil {
		discount = *cart.Discount
	}

	shipping, _ := table.Cost(shippingMethod)
	tax := subtotal.Mul(taxRate).Round(2)

	total := subtotal.Sub(discount).Add(shipping).Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Summary{
		ItemCount: ItemCount(cart),
		Subtotal:  subtotal,
		Discount:  discount,
		Shipping:  shipping,
		Tax:       tax,
		Total:     total,
	}
}
