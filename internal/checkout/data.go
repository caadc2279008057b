package checkout

import "github.com/sakashimaa/storefront/internal/domain"

const (
	PaymentCreditCard = "credit_card"
	PaymentPayPal     = "paypal"
)

type Address struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Line1      string `json:"address_line1" validate:"required,min=3"`
	Line2      string `json:"address_line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code" validate:"required,postal"`
	Country    string `json:"country" validate:"required,len=2"`
	Phone      string `json:"phone,omitempty"`
}

func (a Address) toOrderAddress() domain.OrderAddress {
	return domain.OrderAddress{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// Card fields are only required for credit card payments; see validateData.
type Card struct {
	Number string `json:"number,omitempty" validate:"omitempty,cardnumber"`
	Name   string `json:"name,omitempty" validate:"omitempty,max=100"`
	Expiry string `json:"expiry,omitempty" validate:"omitempty,expiry"`
	CVC    string `json:"cvc,omitempty" validate:"omitempty,cvc"`
}

// Data is the single form value shared by every checkout step.
type Data struct {
	Email                 string  `json:"email" validate:"required,email"`
	ShippingAddress       Address `json:"shipping_address"`
	BillingSameAsShipping bool    `json:"billing_same_as_shipping"`
	BillingAddress        Address `json:"billing_address" validate:"-"`
	ShippingMethod        string  `json:"shipping_method" validate:"required"`
	PaymentMethod         string  `json:"payment_method" validate:"required,oneof=credit_card paypal"`
	Card                  Card    `json:"card"`
	Notes                 string  `json:"notes,omitempty" validate:"max=500"`
}

func newData() Data {
	return Data{
		BillingSameAsShipping: true,
		ShippingMethod:        "standard",
	}
}

func (d Data) orderRequest() *domain.CreateOrderRequest {
	billing := d.BillingAddress
	if d.BillingSameAsShipping {
		billing = d.ShippingAddress
	}

	req := &domain.CreateOrderRequest{
		Email:           d.Email,
		ShippingAddress: d.ShippingAddress.toOrderAddress(),
		BillingAddress:  billing.toOrderAddress(),
		ShippingMethod:  d.ShippingMethod,
		PaymentMethod:   d.PaymentMethod,
		Notes:           d.Notes,
	}

	if d.PaymentMethod == PaymentCreditCard {
		req.PaymentDetails = &domain.PaymentDetails{
			CardNumber: d.Card.Number,
			CardName:   d.Card.Name,
			Expiry:     d.Card.Expiry,
			CVC:        d.Card.CVC,
		}
	}

	return req
}
