package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/service"
	pkgdomain "github.com/sakashimaa/storefront/pkg/domain"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	msgCartLoad      = "Failed to load cart. Please try again."
	msgCartAdd       = "Failed to add item to cart. Please try again."
	msgCartUpdate    = "Failed to update cart item. Please try again."
	msgCartRemove    = "Failed to remove item from cart. Please try again."
	msgCartClear     = "Failed to clear cart. Please try again."
	msgCouponApply   = "Failed to apply coupon. Please try again."
	msgCouponRemove  = "Failed to remove coupon. Please try again."
	msgInvalidQty    = "Quantity must be at least 1."
	msgItemPending   = "This item is still being updated."
	addPendingPrefix = "add:"
)

// CartStore mirrors the backend cart. Mutations are request-then-refresh: the snapshot only
// ever holds a cart the backend returned, and a failed call leaves it untouched.
type CartStore struct {
	*container[domain.Cart]
	svc  service.CartService
	deps Deps

	pendingMu sync.Mutex
	pending   map[string]struct{}

	seqMu   sync.Mutex
	issued  uint64
	applied uint64
}

func NewCartStore(svc service.CartService, deps Deps) *CartStore {
	return &CartStore{
		container: newContainer(domain.Cart{}, func(c domain.Cart) domain.Cart { return c.Clone() }),
		svc:       svc,
		deps:      deps.withDefaults(),
		pending:   make(map[string]struct{}),
	}
}

func (s *CartStore) Refresh(ctx context.Context) error {
	ctx, span := startSpan(ctx, "CartStore.Refresh")
	defer span.End()

	done := s.startLoading()
	defer done()
	if err := s.fetch(ctx); err != nil {
		return fail(ctx, s.deps, s.container, span, msgCartLoad, err)
	}

	return nil
}

func (s *CartStore) AddItem(ctx context.Context, productID string, quantity int, variantID string) error {
	ctx, span := startSpan(ctx, "CartStore.AddItem")
	defer span.End()

	if quantity < 1 {
		return fail(ctx, s.deps, s.container, span, msgInvalidQty, fmt.Errorf("%w: quantity %d", service.ErrInvalidInput, quantity))
	}

	key := addPendingPrefix + productID + ":" + variantID
	if !s.acquire(key) {
		return fail(ctx, s.deps, s.container, span, msgItemPending, ErrItemPending)
	}
	defer s.release(key)

	done := s.startLoading()
	defer done()
	err := s.svc.AddItem(ctx, &domain.AddItemRequest{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
	})
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgCartAdd, err)
	}

	if err := s.fetch(ctx); err != nil {
		return fail(ctx, s.deps, s.container, span, msgCartLoad, err)
	}

	s.publish(ctx, "add_item")
	return nil
}

func (s *CartStore) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	ctx, span := startSpan(ctx, "CartStore.UpdateItem")
	defer span.End()

	if quantity < 1 {
		return fail(ctx, s.deps, s.container, span, msgInvalidQty, fmt.Errorf("%w: quantity %d", service.ErrInvalidInput, quantity))
	}

	return s.replace(ctx, span, itemID, msgCartUpdate, "update_item", func(ctx context.Context) (*domain.Cart, error) {
		return s.svc.UpdateItem(ctx, itemID, &domain.UpdateItemRequest{Quantity: quantity})
	})
}

func (s *CartStore) RemoveItem(ctx context.Context, itemID string) error {
	ctx, span := startSpan(ctx, "CartStore.RemoveItem")
	defer span.End()

	return s.replace(ctx, span, itemID, msgCartRemove, "remove_item", func(ctx context.Context) (*domain.Cart, error) {
		return s.svc.RemoveItem(ctx, itemID)
	})
}

func (s *CartStore) Clear(ctx context.Context) error {
	ctx, span := startSpan(ctx, "CartStore.Clear")
	defer span.End()

	done := s.startLoading()
	defer done()
	if err := s.svc.Clear(ctx); err != nil {
		return fail(ctx, s.deps, s.container, span, msgCartClear, err)
	}

	if err := s.fetch(ctx); err != nil {
		return fail(ctx, s.deps, s.container, span, msgCartLoad, err)
	}

	s.publish(ctx, "clear")
	return nil
}

func (s *CartStore) ApplyCoupon(ctx context.Context, code string) error {
	ctx, span := startSpan(ctx, "CartStore.ApplyCoupon")
	defer span.End()

	done := s.startLoading()
	defer done()
	if err := s.svc.ApplyCoupon(ctx, &domain.ApplyCouponRequest{Code: code}); err != nil {
		return fail(ctx, s.deps, s.container, span, msgCouponApply, err)
	}

	if err := s.fetch(ctx); err != nil {
		return fail(ctx, s.deps, s.container, span, msgCartLoad, err)
	}

	s.deps.UI.PushToast(ToastSuccess, "Coupon applied.")
	s.publish(ctx, "apply_coupon")
	return nil
}

func (s *CartStore) RemoveCoupon(ctx context.Context) error {
	ctx, span := startSpan(ctx, "CartStore.RemoveCoupon")
	defer span.End()

	done := s.startLoading()
	defer done()
	if err := s.svc.RemoveCoupon(ctx); err != nil {
		return fail(ctx, s.deps, s.container, span, msgCouponRemove, err)
	}

	if err := s.fetch(ctx); err != nil {
		return fail(ctx, s.deps, s.container, span, msgCartLoad, err)
	}

	s.publish(ctx, "remove_coupon")
	return nil
}

// IsItemPending reports whether a mutation for itemID is in flight.
func (s *CartStore) IsItemPending(itemID string) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	_, ok := s.pending[itemID]
	return ok
}

// PendingItems returns the ids of cart items with a mutation in flight.
func (s *CartStore) PendingItems() map[string]bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	out := make(map[string]bool, len(s.pending))
	for id := range s.pending {
		out[id] = true
	}
	return out
}

func (s *CartStore) replace(
	ctx context.Context,
	span trace.Span,
	itemID, msg, action string,
	call func(ctx context.Context) (*domain.Cart, error),
) error {
	if !s.acquire(itemID) {
		return fail(ctx, s.deps, s.container, span, msgItemPending, ErrItemPending)
	}
	defer s.release(itemID)

	ticket := s.ticket()
	done := s.startLoading()
	defer done()

	cart, err := call(ctx)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msg, err)
	}

	s.apply(ctx, ticket, cart)
	s.publish(ctx, action)
	return nil
}

func (s *CartStore) fetch(ctx context.Context) error {
	ticket := s.ticket()

	cart, err := s.svc.Get(ctx)
	if err != nil {
		return err
	}

	s.apply(ctx, ticket, cart)
	return nil
}

func (s *CartStore) ticket() uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	s.issued++
	return s.issued
}

// apply installs cart unless a response to a later request has already been installed.
func (s *CartStore) apply(ctx context.Context, ticket uint64, cart *domain.Cart) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	if ticket < s.applied {
		mylogger.Debug(
			ctx,
			s.deps.Logger,
			"dropping stale cart response",
			zap.Uint64("ticket", ticket),
			zap.Uint64("applied", s.applied),
		)
		return
	}

	s.applied = ticket

	next := cart.Clone()
	next.Recalculate()
	s.set(next)
}

func (s *CartStore) acquire(key string) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if _, ok := s.pending[key]; ok {
		return false
	}
	s.pending[key] = struct{}{}
	return true
}

func (s *CartStore) release(key string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	delete(s.pending, key)
}

func (s *CartStore) publish(ctx context.Context, action string) {
	cart := s.State().Value
	s.deps.Events.Publish(ctx, pkgdomain.EventCartUpdated, pkgdomain.CartUpdatedEvent{
		CartID:    cart.ID,
		Action:    action,
		ItemCount: cart.ItemCount,
		Total:     cart.TotalAmount.StringFixed(2),
		UpdatedAt: time.Now(),
	})
}
