package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/store"
	pkgdomain "github.com/sakashimaa/storefront/pkg/domain"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type FlowSuite struct {
	suite.Suite
	ctx    context.Context
	orders *fakeOrders
	cart   *fakeCart
	events *recordingPublisher
	ui     *store.UIStore
	flow   *Flow
}

func (s *FlowSuite) SetupTest() {
	s.ctx = context.Background()
	s.orders = &fakeOrders{}
	s.cart = &fakeCart{}
	s.events = &recordingPublisher{}
	s.ui = store.NewUIStore(0)

	deps := store.Deps{Logger: zap.NewNop(), UI: s.ui, Events: s.events}
	s.flow = NewFlow(
		NewPricing(0, nil),
		store.NewOrderStore(s.orders, deps),
		store.NewCartStore(s.cart, deps),
		deps,
	)
	s.flow.now = func() time.Time { return time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC) }
}

func (s *FlowSuite) fillShipping() {
	s.Require().NoError(s.flow.Update(func(d *Data) {
		d.Email = "jane@example.com"
		d.ShippingAddress = Address{
			FirstName:  "Jane",
			LastName:   "Doe",
			Line1:      "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		}
		d.ShippingMethod = "express"
	}))
}

func (s *FlowSuite) fillCard(number string) {
	s.Require().NoError(s.flow.Update(func(d *Data) {
		d.PaymentMethod = PaymentCreditCard
		d.Card = Card{Number: number, Name: "Jane Doe", Expiry: "12/30", CVC: "123"}
	}))
}

func (s *FlowSuite) toReview() {
	step, err := s.flow.Continue()
	s.Require().NoError(err)
	s.Require().Equal(StepPayment, step)

	step, err = s.flow.Continue()
	s.Require().NoError(err)
	s.Require().Equal(StepReview, step)
}

func (s *FlowSuite) TestCardWithoutNumberIsRejected() {
	s.fillShipping()
	s.fillCard("")
	s.toReview()

	order, err := s.flow.PlaceOrder(s.ctx)
	s.Require().Nil(order)

	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Require().Contains(verr.Fields, "card.number")

	s.Require().Zero(s.orders.calls())
	s.Require().Equal(StepReview, s.flow.Step())
}

func (s *FlowSuite) TestInvalidCardNumber() {
	s.fillShipping()
	s.fillCard("4242 4242 4242 4241")
	s.toReview()

	_, err := s.flow.PlaceOrder(s.ctx)

	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Require().Equal("card.number must be a valid card number", verr.Fields["card.number"])
}

func (s *FlowSuite) TestPayPalOrderSubmits() {
	s.fillShipping()
	s.Require().NoError(s.flow.Update(func(d *Data) { d.PaymentMethod = PaymentPayPal }))
	s.toReview()

	order, err := s.flow.PlaceOrder(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal("order-1", order.ID)

	s.Require().Equal(StepSubmitted, s.flow.Step())
	s.Require().Equal(newData(), s.flow.Data())

	placed, ok := s.flow.Confirmation()
	s.Require().True(ok)
	s.Require().Equal(order, placed)

	req := s.orders.reqs[0]
	s.Require().Nil(req.PaymentDetails)
	s.Require().Equal("Jane", req.BillingAddress.FirstName)

	s.Require().Equal(1, s.cart.getCalls)
	s.Require().Equal([]string{pkgdomain.EventOrderPlaced}, s.events.events)
	toasts := s.ui.Toasts()
	s.Require().Equal(store.ToastSuccess, toasts[len(toasts)-1].Kind)
}

func (s *FlowSuite) TestCreditCardOrderCarriesPaymentDetails() {
	s.fillShipping()
	s.fillCard("4242 4242 4242 4242")
	s.toReview()

	_, err := s.flow.PlaceOrder(s.ctx)
	s.Require().NoError(err)

	details := s.orders.reqs[0].PaymentDetails
	s.Require().NotNil(details)
	s.Require().Equal("12/30", details.Expiry)
}

func (s *FlowSuite) TestBackKeepsData() {
	s.fillShipping()
	_, err := s.flow.Continue()
	s.Require().NoError(err)

	s.fillCard("4242424242424242")
	before := s.flow.Data()

	step, err := s.flow.Back()
	s.Require().NoError(err)
	s.Require().Equal(StepShipping, step)
	s.Require().Equal(before, s.flow.Data())

	_, err = s.flow.Back()
	s.Require().ErrorIs(err, ErrInvalidStep)
}

func (s *FlowSuite) TestBackFromReviewKeepsShippingFields() {
	s.fillShipping()
	s.fillCard("4242424242424242")
	s.toReview()
	before := s.flow.Data()

	step, err := s.flow.Back()
	s.Require().NoError(err)
	s.Require().Equal(StepPayment, step)
	s.Require().Equal(before, s.flow.Data())
	s.Require().Equal("jane@example.com", s.flow.Data().Email)
	s.Require().Equal("express", s.flow.Data().ShippingMethod)
	s.Require().Equal("1 Main St", s.flow.Data().ShippingAddress.Line1)

	step, err = s.flow.Continue()
	s.Require().NoError(err)
	s.Require().Equal(StepReview, step)
	s.Require().Equal(before, s.flow.Data())
}

func (s *FlowSuite) TestFailedEditKeepsData() {
	s.fillShipping()
	before := s.flow.Data()

	err := s.flow.Edit(func(d *Data) error {
		d.Email = "half@written.co"
		return errors.New("bad input")
	})
	s.Require().Error(err)
	s.Require().Equal(before, s.flow.Data())
}

func (s *FlowSuite) TestFailedSubmitStaysOnReviewWithSameKey() {
	s.fillShipping()
	s.Require().NoError(s.flow.Update(func(d *Data) { d.PaymentMethod = PaymentPayPal }))
	s.toReview()

	s.orders.err = errors.New("gateway timeout")

	_, err := s.flow.PlaceOrder(s.ctx)
	s.Require().Error(err)
	s.Require().Equal(StepReview, s.flow.Step())

	state := s.flow.State(domain.Cart{})
	s.Require().Equal("Failed to place order. Please try again.", state.Error)
	s.Require().False(state.Submitting)
	s.Require().Equal("jane@example.com", state.Data.Email)

	_, err = s.flow.PlaceOrder(s.ctx)
	s.Require().Error(err)
	s.Require().Len(s.orders.keys, 2)
	s.Require().Equal(s.orders.keys[0], s.orders.keys[1])

	s.Require().NoError(s.flow.Update(func(d *Data) { d.Notes = "leave at door" }))
	s.orders.err = nil

	_, err = s.flow.PlaceOrder(s.ctx)
	s.Require().NoError(err)
	s.Require().NotEqual(s.orders.keys[0], s.orders.keys[2])
}

func (s *FlowSuite) TestDoubleSubmitIsRejected() {
	s.fillShipping()
	s.Require().NoError(s.flow.Update(func(d *Data) { d.PaymentMethod = PaymentPayPal }))
	s.toReview()

	s.orders.gate = make(chan struct{})
	s.orders.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := s.flow.PlaceOrder(s.ctx)
		done <- err
	}()
	<-s.orders.entered

	_, err := s.flow.PlaceOrder(s.ctx)
	s.Require().ErrorIs(err, ErrSubmitInFlight)
	s.Require().ErrorIs(s.flow.Update(func(d *Data) { d.Notes = "x" }), ErrSubmitInFlight)
	s.Require().True(s.flow.State(domain.Cart{}).Submitting)

	close(s.orders.gate)
	s.Require().NoError(<-done)
	s.Require().Equal(1, s.orders.calls())
}

func (s *FlowSuite) TestPlaceOrderOnlyFromReview() {
	s.fillShipping()

	_, err := s.flow.PlaceOrder(s.ctx)
	s.Require().ErrorIs(err, ErrNotAtReview)
	s.Require().Zero(s.orders.calls())
}

func (s *FlowSuite) TestGoToOnlyMovesBack() {
	s.Require().ErrorIs(s.flow.GoTo(StepReview), ErrInvalidStep)

	s.toReview()
	s.Require().NoError(s.flow.GoTo(StepShipping))
	s.Require().Equal(StepShipping, s.flow.Step())

	s.Require().ErrorIs(s.flow.GoTo(Step("nowhere")), ErrInvalidStep)
}

func (s *FlowSuite) TestSubmittedFlowIsFrozenUntilReset() {
	s.fillShipping()
	s.Require().NoError(s.flow.Update(func(d *Data) { d.PaymentMethod = PaymentPayPal }))
	s.toReview()
	_, err := s.flow.PlaceOrder(s.ctx)
	s.Require().NoError(err)

	s.Require().ErrorIs(s.flow.Update(func(d *Data) {}), ErrAlreadyComplete)
	s.Require().ErrorIs(s.flow.GoTo(StepShipping), ErrInvalidStep)

	s.flow.Reset()
	s.Require().Equal(StepShipping, s.flow.Step())
	_, ok := s.flow.Confirmation()
	s.Require().False(ok)
}

func (s *FlowSuite) TestStateShowsCurrentStepErrorsOnly() {
	state := s.flow.State(domain.Cart{})
	s.Require().Contains(state.Errors, "email")
	s.Require().Contains(state.Errors, "shipping_address.city")
	s.Require().NotContains(state.Errors, "payment_method")

	s.fillShipping()
	_, err := s.flow.Continue()
	s.Require().NoError(err)

	state = s.flow.State(domain.Cart{})
	s.Require().Contains(state.Errors, "payment_method")
	s.Require().NotContains(state.Errors, "email")
}

func (s *FlowSuite) TestSeparateBillingAddressIsValidated() {
	s.fillShipping()
	s.Require().NoError(s.flow.Update(func(d *Data) {
		d.BillingSameAsShipping = false
		d.BillingAddress = Address{FirstName: "Jane"}
	}))

	errs := s.flow.ValidateStep(StepShipping)
	s.Require().Contains(errs, "billing_address.city")
	s.Require().NotContains(errs, "billing_address.first_name")
}

func (s *FlowSuite) TestUnknownShippingMethod() {
	s.fillShipping()
	s.Require().NoError(s.flow.Update(func(d *Data) { d.ShippingMethod = "teleport" }))

	errs := s.flow.ValidateStep(StepShipping)
	s.Require().Equal("shipping_method must be one of: express overnight standard", errs["shipping_method"])
}

func (s *FlowSuite) TestPrefillKeepsTypedValues() {
	s.Require().NoError(s.flow.Update(func(d *Data) { d.Email = "typed@example.com" }))

	s.flow.Prefill(
		&domain.User{ID: "u-1", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
		&domain.Address{ID: "a-1", FirstName: "Jane", LastName: "Doe", Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
	)

	d := s.flow.Data()
	s.Require().Equal("typed@example.com", d.Email)
	s.Require().Equal("Springfield", d.ShippingAddress.City)
}

func (s *FlowSuite) TestSummaryUsesSelectedShipping() {
	s.fillShipping()

	state := s.flow.State(domain.Cart{})
	s.Require().Equal("12.99", state.Summary.Shipping.StringFixed(2))
}

func TestFlowSuite(t *testing.T) {
	suite.Run(t, new(FlowSuite))
}
