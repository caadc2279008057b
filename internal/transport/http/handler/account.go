package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/store"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.uber.org/zap"
)

// AccountHandler serves the signed-in user's orders and address book.
type AccountHandler struct {
	base
	orders    *store.OrderStore
	addresses *store.AddressStore
}

func NewAccountHandler(
	orders *store.OrderStore,
	addresses *store.AddressStore,
	validate *validator.Validate,
	logger *zap.Logger,
	timeout time.Duration,
) *AccountHandler {
	return &AccountHandler{
		base:      newBase(logger, validate, timeout),
		orders:    orders,
		addresses: addresses,
	}
}

func (h *AccountHandler) Orders(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.orders.LoadOrders(ctx, c.QueryInt("page", 1)); err != nil {
		return h.fail(c, ctx, "list orders", h.orders.State().Error, err)
	}

	return c.JSON(h.orders.State().Value.Orders)
}

func (h *AccountHandler) Order(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.orders.LoadOrder(ctx, c.Params("id")); err != nil {
		return h.fail(c, ctx, "get order", h.orders.State().Error, err)
	}

	order := h.orders.State().Value.Current
	return c.JSON(fiber.Map{
		"order":      order,
		"can_cancel": order.CanCancel(),
	})
}

func (h *AccountHandler) CancelOrder(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	id := c.Params("id")
	if err := h.orders.Cancel(ctx, id); err != nil {
		return h.fail(c, ctx, "cancel order", h.orders.State().Error, err)
	}

	mylogger.Info(ctx, h.logger, "cancel order succeeded", zap.String("order_id", id))

	return c.JSON(fiber.Map{"order": h.orders.State().Value.Current})
}

func (h *AccountHandler) Addresses(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.addresses.Load(ctx); err != nil {
		return h.fail(c, ctx, "list addresses", h.addresses.State().Error, err)
	}

	return c.JSON(fiber.Map{"items": h.addresses.State().Value})
}

func (h *AccountHandler) CreateAddress(c *fiber.Ctx) error {
	input := new(domain.AddressInput)
	if ok, err := h.parse(c, input); !ok {
		return err
	}

	ctx, cancel := h.context(c)
	defer cancel()

	address, err := h.addresses.Create(ctx, input)
	if err != nil {
		return h.fail(c, ctx, "create address", h.addresses.State().Error, err)
	}

	return c.Status(fiber.StatusCreated).JSON(address)
}

func (h *AccountHandler) UpdateAddress(c *fiber.Ctx) error {
	input := new(domain.AddressInput)
	if ok, err := h.parse(c, input); !ok {
		return err
	}

	ctx, cancel := h.context(c)
	defer cancel()

	address, err := h.addresses.Update(ctx, c.Params("id"), input)
	if err != nil {
		return h.fail(c, ctx, "update address", h.addresses.State().Error, err)
	}

	return c.JSON(address)
}

func (h *AccountHandler) DeleteAddress(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.addresses.Delete(ctx, c.Params("id")); err != nil {
		return h.fail(c, ctx, "delete address", h.addresses.State().Error, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AccountHandler) SetDefaultAddress(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.addresses.SetDefault(ctx, c.Params("id")); err != nil {
		return h.fail(c, ctx, "set default address", h.addresses.State().Error, err)
	}

	return c.JSON(fiber.Map{"items": h.addresses.State().Value})
}
