package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type fakeOrders struct {
	mu      sync.Mutex
	keys    []string
	reqs    []*domain.CreateOrderRequest
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeOrders) List(context.Context, int, int) (*domain.Page[domain.Order], error) {
	return &domain.Page[domain.Order]{}, nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (*domain.Order, error) {
	return &domain.Order{ID: id, Status: domain.OrderStatusPending}, nil
}

func (f *fakeOrders) Create(ctx context.Context, req *domain.CreateOrderRequest, key string) (*domain.Order, error) {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.reqs = append(f.reqs, req)
	gate, entered, err := f.gate, f.entered, f.err
	n := len(f.keys)
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	return &domain.Order{
		ID:          fmt.Sprintf("order-%d", n),
		OrderNumber: fmt.Sprintf("SF-%04d", n),
		Email:       req.Email,
		Status:      domain.OrderStatusPending,
		Total:       decimal.RequireFromString("41.97"),
	}, nil
}

func (f *fakeOrders) Cancel(_ context.Context, id string) (*domain.Order, error) {
	return &domain.Order{ID: id, Status: domain.OrderStatusCancelled}, nil
}

func (f *fakeOrders) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.keys)
}

type fakeCart struct {
	mu       sync.Mutex
	getCalls int
}

func (f *fakeCart) Get(context.Context) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++
	return &domain.Cart{ID: "cart-1"}, nil
}

func (f *fakeCart) AddItem(context.Context, *domain.AddItemRequest) error { return nil }

func (f *fakeCart) UpdateItem(context.Context, string, *domain.UpdateItemRequest) (*domain.Cart, error) {
	return &domain.Cart{ID: "cart-1"}, nil
}

func (f *fakeCart) RemoveItem(context.Context, string) (*domain.Cart, error) {
	return &domain.Cart{ID: "cart-1"}, nil
}

func (f *fakeCart) Clear(context.Context) error                                   { return nil }
func (f *fakeCart) ApplyCoupon(context.Context, *domain.ApplyCouponRequest) error { return nil }
func (f *fakeCart) RemoveCoupon(context.Context) error                            { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
}
