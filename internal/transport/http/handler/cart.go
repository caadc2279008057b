package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/internal/checkout"
	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/selector"
	"github.com/sakashimaa/storefront/internal/store"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartHandler struct {
	base
	cart    *store.CartStore
	pricing checkout.Pricing
	view    *selector.Memo[domain.Cart, cartView]
}

type cartLine struct {
	domain.CartItem
	Total   decimal.Decimal `json:"line_total"`
	Pending bool            `json:"pending"`
}

type cartView struct {
	ID         string           `json:"id"`
	Items      []cartLine       `json:"items"`
	ItemCount  int              `json:"item_count"`
	CouponCode string           `json:"coupon_code,omitempty"`
	Summary    selector.Summary `json:"summary"`
}

type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=99"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=99"`
}

type CouponInput struct {
	Code string `json:"code" validate:"required,max=64"`
}

func NewCartHandler(
	cart *store.CartStore,
	pricing checkout.Pricing,
	validate *validator.Validate,
	logger *zap.Logger,
	timeout time.Duration,
) *CartHandler {
	return &CartHandler{
		base:    newBase(logger, validate, timeout),
		cart:    cart,
		pricing: pricing,
		view: selector.NewMemo(func(cart domain.Cart) cartView {
			return buildCartView(cart, pricing)
		}),
	}
}

// buildCartView is the drawer: lines, count and a summary with standard shipping.
func buildCartView(cart domain.Cart, pricing checkout.Pricing) cartView {
	lines := make([]cartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, cartLine{CartItem: item, Total: item.LineTotal()})
	}

	return cartView{
		ID:         cart.ID,
		Items:      lines,
		ItemCount:  selector.ItemCount(cart),
		CouponCode: cart.CouponCode,
		Summary:    selector.CartSummary(cart, "standard", pricing.Shipping, pricing.TaxRate),
	}
}

func (h *CartHandler) render(c *fiber.Ctx, status int) error {
	view := h.view.Get(h.cart)
	state := h.cart.State()
	pending := h.cart.PendingItems()

	lines := make([]cartLine, len(view.Items))
	for i, line := range view.Items {
		line.Pending = pending[line.ID]
		lines[i] = line
	}
	view.Items = lines

	return c.Status(status).JSON(fiber.Map{
		"cart":    view,
		"loading": state.Loading,
		"error":   state.Error,
	})
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	if c.QueryBool("refresh") {
		ctx, cancel := h.context(c)
		defer cancel()

		if err := h.cart.Refresh(ctx); err != nil {
			return h.fail(c, ctx, "refresh cart", h.cart.State().Error, err)
		}
	}

	return h.render(c, fiber.StatusOK)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	input := new(AddItemInput)
	if ok, err := h.parse(c, input); !ok {
		return err
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.cart.AddItem(ctx, input.ProductID, input.Quantity, input.VariantID); err != nil {
		return h.fail(c, ctx, "add item", h.cart.State().Error, err)
	}

	mylogger.Info(
		ctx,
		h.logger,
		"add item succeeded",
		zap.String("product_id", input.ProductID),
		zap.Int("quantity", input.Quantity),
	)

	return h.render(c, fiber.StatusCreated)
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	input := new(UpdateItemInput)
	if ok, err := h.parse(c, input); !ok {
		return err
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.cart.UpdateItem(ctx, c.Params("id"), input.Quantity); err != nil {
		return h.fail(c, ctx, "update item", h.cart.State().Error, err)
	}

	return h.render(c, fiber.StatusOK)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.cart.RemoveItem(ctx, c.Params("id")); err != nil {
		return h.fail(c, ctx, "remove item", h.cart.State().Error, err)
	}

	return h.render(c, fiber.StatusOK)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.cart.Clear(ctx); err != nil {
		return h.fail(c, ctx, "clear cart", h.cart.State().Error, err)
	}

	return h.render(c, fiber.StatusOK)
}

func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	input := new(CouponInput)
	if ok, err := h.parse(c, input); !ok {
		return err
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.cart.ApplyCoupon(ctx, input.Code); err != nil {
		return h.fail(c, ctx, "apply coupon", h.cart.State().Error, err)
	}

	return h.render(c, fiber.StatusOK)
}

func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.cart.RemoveCoupon(ctx); err != nil {
		return h.fail(c, ctx, "remove coupon", h.cart.State().Error, err)
	}

	return h.render(c, fiber.StatusOK)
}
