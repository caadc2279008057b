package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderItem snapshots the product at order time; it does not follow catalog changes.
type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id" validate:"required"`
	VariantID   string          `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity" validate:"gte=1"`
	Total       decimal.Decimal `json:"total"`
}

type OrderAddress struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Line1      string `json:"address_line1"`
	Line2      string `json:"address_line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type Order struct {
	ID              string          `json:"id" validate:"required"`
	OrderNumber     string          `json:"order_number"`
	UserID          string          `json:"user_id,omitempty"`
	Email           string          `json:"email,omitempty"`
	Status          OrderStatus     `json:"status" validate:"required"`
	Items           []OrderItem     `json:"items" validate:"dive"`
	ShippingAddress *OrderAddress   `json:"shipping_address,omitempty"`
	BillingAddress  *OrderAddress   `json:"billing_address,omitempty"`
	ShippingMethod  string          `json:"shipping_method,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Tax             decimal.Decimal `json:"tax_amount"`
	Discount        decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Clone copies the order so snapshot readers cannot alias its items or addresses.
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = append([]OrderItem(nil), o.Items...)
	}
	if o.ShippingAddress != nil {
		addr := *o.ShippingAddress
		out.ShippingAddress = &addr
	}
	if o.BillingAddress != nil {
		addr := *o.BillingAddress
		out.BillingAddress = &addr
	}

	return out
}

// CanCancel reports whether the backend accepts a cancel transition for the order.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

type PaymentDetails struct {
	CardNumber string `json:"card_number,omitempty"`
	CardName   string `json:"card_name,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CVC        string `json:"cvc,omitempty"`
}

type CreateOrderRequest struct {
	Email           string          `json:"email" validate:"required,email"`
	ShippingAddress OrderAddress    `json:"shipping_address"`
	BillingAddress  OrderAddress    `json:"billing_address"`
	ShippingMethod  string          `json:"shipping_method" validate:"required"`
	PaymentMethod   string          `json:"payment_method" validate:"required"`
	PaymentDetails  *PaymentDetails `json:"payment_details,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}
