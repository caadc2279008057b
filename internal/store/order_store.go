package store

import (
	"context"
	"errors"
	"time"

	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/service"
	pkgdomain "github.com/sakashimaa/storefront/pkg/domain"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.uber.org/zap"
)

var ErrNotCancellable = errors.New("order can no longer be cancelled")

const (
	msgOrdersLoad  = "Failed to load orders."
	msgOrderLoad   = "Failed to load order."
	msgOrderCancel = "Failed to cancel order. Please try again."
	msgOrderPlace  = "Failed to place order. Please try again."
	msgNoCancel    = "This order can no longer be cancelled."
	ordersPerPage  = 10
)

type OrderState struct {
	Orders     *domain.Page[domain.Order] `json:"orders,omitempty"`
	Current    *domain.Order              `json:"current,omitempty"`
	LastPlaced *domain.Order              `json:"last_placed,omitempty"`
}

func cloneOrderState(s OrderState) OrderState {
	return OrderState{
		Orders:     clonePage(s.Orders, domain.Order.Clone),
		Current:    clonePtr(s.Current, domain.Order.Clone),
		LastPlaced: clonePtr(s.LastPlaced, domain.Order.Clone),
	}
}

type OrderStore struct {
	*container[OrderState]
	svc  service.OrderService
	deps Deps
}

func NewOrderStore(svc service.OrderService, deps Deps) *OrderStore {
	return &OrderStore{
		container: newContainer(OrderState{}, cloneOrderState),
		svc:       svc,
		deps:      deps.withDefaults(),
	}
}

func (s *OrderStore) LoadOrders(ctx context.Context, page int) error {
	ctx, span := startSpan(ctx, "OrderStore.LoadOrders")
	defer span.End()

	done := s.startLoading()
	defer done()
	orders, err := s.svc.List(ctx, page, ordersPerPage)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgOrdersLoad, err)
	}

	s.update(func(st *Snapshot[OrderState]) {
		st.Value.Orders = orders
	})
	return nil
}

func (s *OrderStore) LoadOrder(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, "OrderStore.LoadOrder")
	defer span.End()

	done := s.startLoading()
	defer done()
	order, err := s.svc.Get(ctx, id)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgOrderLoad, err)
	}

	s.update(func(st *Snapshot[OrderState]) {
		st.Value.Current = order
	})
	return nil
}

// Cancel loads the order when needed and refuses locally if its status no longer allows it.
func (s *OrderStore) Cancel(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, "OrderStore.Cancel")
	defer span.End()

	current := s.State().Value.Current
	if current == nil || current.ID != id {
		done := s.startLoading()
		defer done()
		order, err := s.svc.Get(ctx, id)
		if err != nil {
			return fail(ctx, s.deps, s.container, span, msgOrderLoad, err)
		}
		current = order
	}

	if !current.CanCancel() {
		return fail(ctx, s.deps, s.container, span, msgNoCancel, ErrNotCancellable)
	}

	done := s.startLoading()
	defer done()
	order, err := s.svc.Cancel(ctx, id)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgOrderCancel, err)
	}

	s.update(func(st *Snapshot[OrderState]) {
		st.Value.Current = order
		st.Value.Orders = replaceOrder(st.Value.Orders, order)
	})

	s.deps.UI.PushToast(ToastSuccess, "Order cancelled.")
	s.deps.Events.Publish(ctx, pkgdomain.EventOrderCancelled, pkgdomain.OrderCancelledEvent{
		OrderID:     order.ID,
		CancelledAt: time.Now(),
	})
	return nil
}

// Place creates the order. idempotencyKey must stay the same across resubmissions of one attempt.
func (s *OrderStore) Place(ctx context.Context, req *domain.CreateOrderRequest, idempotencyKey string) (*domain.Order, error) {
	ctx, span := startSpan(ctx, "OrderStore.Place")
	defer span.End()

	done := s.startLoading()
	defer done()
	order, err := s.svc.Create(ctx, req, idempotencyKey)
	if err != nil {
		return nil, fail(ctx, s.deps, s.container, span, msgOrderPlace, err)
	}

	s.update(func(st *Snapshot[OrderState]) {
		st.Value.LastPlaced = order
	})

	mylogger.Info(
		ctx,
		s.deps.Logger,
		"order placed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
	)

	return order, nil
}

func replaceOrder(page *domain.Page[domain.Order], order *domain.Order) *domain.Page[domain.Order] {
	if page == nil {
		return nil
	}

	out := *page
	out.Items = append([]domain.Order(nil), page.Items...)
	for i := range out.Items {
		if out.Items[i].ID == order.ID {
			out.Items[i] = *order
		}
	}
	return &out
}
