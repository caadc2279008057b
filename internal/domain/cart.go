package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusConverted CartStatus = "converted"
	CartStatusAbandoned CartStatus = "abandoned"
)

type CartItem struct {
	ID        string           `json:"id" validate:"required"`
	ProductID string           `json:"product_id" validate:"required"`
	VariantID string           `json:"variant_id,omitempty"`
	Product   *ProductListItem `json:"product,omitempty" validate:"-"`
	Variant   *ProductVariant  `json:"variant,omitempty" validate:"-"`
	Quantity  int              `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the client-side mirror of the backend cart. ItemCount and TotalAmount are derived
// from Items; Subtotal and Discount are only ever set by the backend.
type Cart struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id,omitempty"`
	SessionID   string           `json:"session_id,omitempty"`
	Status      CartStatus       `json:"status"`
	Items       []CartItem       `json:"items" validate:"dive"`
	ItemCount   int              `json:"item_count"`
	Subtotal    *decimal.Decimal `json:"subtotal,omitempty"`
	Discount    *decimal.Decimal `json:"discount_amount,omitempty"`
	CouponCode  string           `json:"coupon_code,omitempty"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Recalculate rebuilds the aggregate fields from the items.
func (c *Cart) Recalculate() {
	count := 0
	total := decimal.Zero
	for _, item := range c.Items {
		count += item.Quantity
		total = total.Add(item.LineTotal())
	}

	c.ItemCount = count
	if c.Discount != nil {
		total = total.Sub(*c.Discount)
		if total.IsNegative() {
			total = decimal.Zero
		}
	}
	c.TotalAmount = total
}

func (c Cart) Item(itemID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}

	return CartItem{}, false
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone deep-copies the cart so snapshot readers cannot alias the container's slice.
func (c Cart) Clone() Cart {
	out := c
	if c.Items != nil {
		out.Items = make([]CartItem, len(c.Items))
		copy(out.Items, c.Items)
	}

	return out
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}
