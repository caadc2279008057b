package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/internal/checkout"
	"github.com/sakashimaa/storefront/internal/store"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	base
	flow      *checkout.Flow
	cart      *store.CartStore
	auth      *store.AuthStore
	addresses *store.AddressStore
}

func NewCheckoutHandler(
	flow *checkout.Flow,
	cart *store.CartStore,
	auth *store.AuthStore,
	addresses *store.AddressStore,
	validate *validator.Validate,
	logger *zap.Logger,
	timeout time.Duration,
) *CheckoutHandler {
	return &CheckoutHandler{
		base:      newBase(logger, validate, timeout),
		flow:      flow,
		cart:      cart,
		auth:      auth,
		addresses: addresses,
	}
}

func (h *CheckoutHandler) render(c *fiber.Ctx, status int) error {
	return c.Status(status).JSON(h.flow.State(h.cart.State().Value))
}

// Get renders the current step. On the shipping step it first seeds empty fields from the
// signed-in user and their default address.
func (h *CheckoutHandler) Get(c *fiber.Ctx) error {
	if h.flow.Step() == checkout.StepShipping {
		h.flow.Prefill(h.auth.State().Value.User, h.addresses.Default())
	}

	return h.render(c, fiber.StatusOK)
}

// UpdateData merges the posted fields into the form; fields the body leaves out keep their
// values. Field errors come back inline and are not a failure.
func (h *CheckoutHandler) UpdateData(c *fiber.Ctx) error {
	var parseErr error
	err := h.flow.Edit(func(d *checkout.Data) error {
		parseErr = c.BodyParser(d)
		return parseErr
	})
	if parseErr != nil {
		mylogger.Warn(c.UserContext(), h.logger, "body parsing error in update checkout", zap.Error(parseErr))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err != nil {
		return h.fail(c, c.UserContext(), "update checkout", "", err)
	}

	return h.render(c, fiber.StatusOK)
}

func (h *CheckoutHandler) Continue(c *fiber.Ctx) error {
	if _, err := h.flow.Continue(); err != nil {
		return h.fail(c, c.UserContext(), "continue checkout", "", err)
	}

	return h.render(c, fiber.StatusOK)
}

func (h *CheckoutHandler) Back(c *fiber.Ctx) error {
	if _, err := h.flow.Back(); err != nil {
		return h.fail(c, c.UserContext(), "checkout back", "", err)
	}

	return h.render(c, fiber.StatusOK)
}

func (h *CheckoutHandler) GoTo(c *fiber.Ctx) error {
	step, ok := checkout.ParseStep(c.Params("step"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown checkout step",
		})
	}

	if err := h.flow.GoTo(step); err != nil {
		return h.fail(c, c.UserContext(), "checkout goto", "", err)
	}

	return h.render(c, fiber.StatusOK)
}

func (h *CheckoutHandler) PlaceOrder(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	order, err := h.flow.PlaceOrder(ctx)
	if err != nil {
		return h.fail(c, ctx, "place order", h.flow.State(h.cart.State().Value).Error, err)
	}

	mylogger.Info(
		ctx,
		h.logger,
		"place order succeeded",
		zap.String("order_id", order.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order": order,
	})
}

func (h *CheckoutHandler) Confirmation(c *fiber.Ctx) error {
	order, ok := h.flow.Confirmation()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no order placed yet",
		})
	}

	return c.JSON(fiber.Map{"order": order})
}

func (h *CheckoutHandler) Reset(c *fiber.Ctx) error {
	h.flow.Reset()
	return h.render(c, fiber.StatusOK)
}
