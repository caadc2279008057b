package store

import (
	"context"
	"errors"
	"testing"

	"github.com/sakashimaa/storefront/internal/domain"
	pkgdomain "github.com/sakashimaa/storefront/pkg/domain"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type OrderStoreSuite struct {
	suite.Suite
	ctx    context.Context
	svc    *fakeOrderService
	events *recordingPublisher
	ui     *UIStore
	store  *OrderStore
}

func (s *OrderStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.svc = newFakeOrderService(
		domain.Order{ID: "o-pending", Status: domain.OrderStatusPending},
		domain.Order{ID: "o-shipped", Status: domain.OrderStatusShipped},
	)
	s.events = &recordingPublisher{}
	s.ui = NewUIStore(0)
	s.store = NewOrderStore(s.svc, Deps{Logger: zap.NewNop(), UI: s.ui, Events: s.events})
}

func (s *OrderStoreSuite) TestLoadOrders() {
	s.Require().NoError(s.store.LoadOrders(s.ctx, 1))

	state := s.store.State()
	s.Require().False(state.Loading)
	s.Require().NotNil(state.Value.Orders)
	s.Require().Len(state.Value.Orders.Items, 2)
	s.Require().Equal(ordersPerPage, state.Value.Orders.Limit)
}

func (s *OrderStoreSuite) TestCancelPendingOrder() {
	s.Require().NoError(s.store.LoadOrders(s.ctx, 1))
	s.Require().NoError(s.store.Cancel(s.ctx, "o-pending"))

	state := s.store.State().Value
	s.Require().Equal(domain.OrderStatusCancelled, state.Current.Status)
	for _, o := range state.Orders.Items {
		if o.ID == "o-pending" {
			s.Require().Equal(domain.OrderStatusCancelled, o.Status)
		}
	}

	s.Require().Equal([]string{"o-pending"}, s.svc.cancelled)
	s.Require().Equal([]string{pkgdomain.EventOrderCancelled}, s.events.names())
}

func (s *OrderStoreSuite) TestCancelRefusedForShippedOrder() {
	err := s.store.Cancel(s.ctx, "o-shipped")
	s.Require().ErrorIs(err, ErrNotCancellable)

	s.Require().Empty(s.svc.cancelled)
	s.Require().Equal(msgNoCancel, s.store.State().Error)
	s.Require().Empty(s.events.names())
}

func (s *OrderStoreSuite) TestPlaceKeepsLastPlaced() {
	req := &domain.CreateOrderRequest{Email: "a@b.co", ShippingMethod: "standard", PaymentMethod: "paypal"}

	order, err := s.store.Place(s.ctx, req, "key-1")
	s.Require().NoError(err)
	s.Require().Equal(order, s.store.State().Value.LastPlaced)
	s.Require().Equal([]string{"key-1"}, s.svc.keys)
}

func (s *OrderStoreSuite) TestPlaceFailure() {
	s.svc.createErr = errors.New("payment declined")

	order, err := s.store.Place(s.ctx, &domain.CreateOrderRequest{Email: "a@b.co"}, "key-1")
	s.Require().Error(err)
	s.Require().Nil(order)

	state := s.store.State()
	s.Require().Nil(state.Value.LastPlaced)
	s.Require().Equal(msgOrderPlace, state.Error)
}

func (s *OrderStoreSuite) TestStateIsACopy() {
	s.Require().NoError(s.store.LoadOrders(s.ctx, 1))
	s.Require().NoError(s.store.LoadOrder(s.ctx, "o-pending"))

	snap := s.store.State()
	snap.Value.Orders.Items[0].Status = domain.OrderStatusDelivered
	snap.Value.Orders.Total = 99
	snap.Value.Current.Status = domain.OrderStatusDelivered

	state := s.store.State().Value
	s.Require().Equal(2, state.Orders.Total)
	for _, o := range state.Orders.Items {
		s.Require().NotEqual(domain.OrderStatusDelivered, o.Status)
	}
	s.Require().Equal(domain.OrderStatusPending, state.Current.Status)
}

func TestOrderStoreSuite(t *testing.T) {
	suite.Run(t, new(OrderStoreSuite))
}
