package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// fakeCartBackend keeps a server-side cart and lets tests inject failures and pauses.
type fakeCartBackend struct {
	mu     sync.Mutex
	cart   domain.Cart
	nextID int
	prices map[string]decimal.Decimal

	getCalls    int
	getErr      error
	addErr      error
	updateErr   error
	removeErr   error
	clearErr    error
	updateGates map[string]chan struct{}
}

func newFakeCartBackend() *fakeCartBackend {
	return &fakeCartBackend{
		cart: domain.Cart{ID: "cart-1", Status: domain.CartStatusActive},
		prices: map[string]decimal.Decimal{
			"P1": decimal.RequireFromString("10.00"),
			"P2": decimal.RequireFromString("4.50"),
		},
		updateGates: make(map[string]chan struct{}),
	}
}

func (f *fakeCartBackend) snapshot() *domain.Cart {
	c := f.cart.Clone()
	c.Recalculate()
	return &c
}

func (f *fakeCartBackend) Get(context.Context) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.snapshot(), nil
}

func (f *fakeCartBackend) AddItem(_ context.Context, req *domain.AddItemRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.addErr != nil {
		return f.addErr
	}

	for i := range f.cart.Items {
		if f.cart.Items[i].ProductID == req.ProductID && f.cart.Items[i].VariantID == req.VariantID {
			f.cart.Items[i].Quantity += req.Quantity
			return nil
		}
	}

	f.nextID++
	f.cart.Items = append(f.cart.Items, domain.CartItem{
		ID:        fmt.Sprintf("item-%d", f.nextID),
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		UnitPrice: f.prices[req.ProductID],
	})
	return nil
}

func (f *fakeCartBackend) UpdateItem(ctx context.Context, itemID string, req *domain.UpdateItemRequest) (*domain.Cart, error) {
	f.mu.Lock()
	gate := f.updateGates[itemID]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return nil, f.updateErr
	}

	for i := range f.cart.Items {
		if f.cart.Items[i].ID == itemID {
			f.cart.Items[i].Quantity = req.Quantity
			return f.snapshot(), nil
		}
	}

	return nil, fmt.Errorf("item %s not found", itemID)
}

func (f *fakeCartBackend) RemoveItem(_ context.Context, itemID string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.removeErr != nil {
		return nil, f.removeErr
	}

	items := f.cart.Items[:0:0]
	for _, item := range f.cart.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	f.cart.Items = items

	return f.snapshot(), nil
}

func (f *fakeCartBackend) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.clearErr != nil {
		return f.clearErr
	}

	f.cart.Items = nil
	f.cart.CouponCode = ""
	f.cart.Discount = nil
	return nil
}

func (f *fakeCartBackend) ApplyCoupon(_ context.Context, req *domain.ApplyCouponRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if req.Code != "SAVE5" {
		return fmt.Errorf("coupon %s rejected", req.Code)
	}

	discount := decimal.NewFromInt(5)
	f.cart.CouponCode = req.Code
	f.cart.Discount = &discount
	return nil
}

func (f *fakeCartBackend) RemoveCoupon(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cart.CouponCode = ""
	f.cart.Discount = nil
	return nil
}

type publishedEvent struct {
	name    string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, publishedEvent{name: event, payload: payload})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.name)
	}
	return out
}

type fakeOrderService struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	createErr error
	cancelled []string
	keys      []string
}

func newFakeOrderService(orders ...domain.Order) *fakeOrderService {
	f := &fakeOrderService{orders: make(map[string]*domain.Order)}
	for i := range orders {
		o := orders[i]
		f.orders[o.ID] = &o
	}
	return f
}

func (f *fakeOrderService) List(_ context.Context, page, limit int) (*domain.Page[domain.Order], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &domain.Page[domain.Order]{Page: page, Limit: limit, Total: len(f.orders)}
	for _, o := range f.orders {
		out.Items = append(out.Items, *o)
	}
	return out, nil
}

func (f *fakeOrderService) Get(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return nil, apiclient.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (f *fakeOrderService) Create(_ context.Context, req *domain.CreateOrderRequest, key string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keys = append(f.keys, key)
	if f.createErr != nil {
		return nil, f.createErr
	}

	o := &domain.Order{
		ID:          fmt.Sprintf("order-%d", len(f.orders)+1),
		OrderNumber: fmt.Sprintf("SF-%04d", len(f.orders)+1),
		Email:       req.Email,
		Status:      domain.OrderStatusPending,
	}
	f.orders[o.ID] = o
	out := *o
	return &out, nil
}

func (f *fakeOrderService) Cancel(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return nil, apiclient.ErrNotFound
	}
	f.cancelled = append(f.cancelled, id)
	o.Status = domain.OrderStatusCancelled
	out := *o
	return &out, nil
}

type fakeAuthService struct {
	user      *domain.User
	loginErr  error
	session   bool
	loggedOut bool
}

func (f *fakeAuthService) LoginWithEmail(context.Context, *domain.LoginRequest) (*domain.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.session = true
	return f.user, nil
}

func (f *fakeAuthService) Register(context.Context, *domain.RegisterRequest) (*domain.User, error) {
	f.session = true
	return f.user, nil
}

func (f *fakeAuthService) Me(context.Context) (*domain.User, error) {
	if !f.session {
		return nil, apiclient.ErrUnauthorized
	}
	return f.user, nil
}

func (f *fakeAuthService) RequestPasswordReset(context.Context, *domain.PasswordResetRequest) error {
	return nil
}

func (f *fakeAuthService) ConfirmPasswordReset(context.Context, *domain.PasswordResetConfirm) error {
	return nil
}

func (f *fakeAuthService) Logout(context.Context) error {
	f.session = false
	f.loggedOut = true
	return nil
}

func (f *fakeAuthService) HasSession(context.Context) (bool, error) {
	return f.session, nil
}
