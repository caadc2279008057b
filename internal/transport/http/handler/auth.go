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

type AuthHandler struct {
	base
	auth *store.AuthStore
}

func NewAuthHandler(auth *store.AuthStore, validate *validator.Validate, logger *zap.Logger, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		base: newBase(logger, validate, timeout),
		auth: auth,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	input := new(domain.LoginRequest)
	if ok, err := h.parse(c, input); !ok {
		return err
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.auth.Login(ctx, input.Email, input.Password); err != nil {
		return h.fail(c, ctx, "login", h.auth.State().Error, err)
	}

	mylogger.Info(ctx, h.logger, "login succeeded", zap.String("email", input.Email))

	return c.JSON(fiber.Map{"user": h.auth.State().Value.User})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	input := new(domain.RegisterRequest)
	if ok, err := h.parse(c, input); !ok {
		return err
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.auth.Register(ctx, input); err != nil {
		return h.fail(c, ctx, "register", h.auth.State().Error, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": h.auth.State().Value.User})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.auth.Logout(ctx); err != nil {
		return h.fail(c, ctx, "logout", h.auth.State().Error, err)
	}

	return c.JSON(fiber.Map{"status": "success"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	if user := h.auth.State().Value.User; user != nil {
		return c.JSON(user)
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.auth.LoadCurrentUser(ctx); err != nil {
		return h.fail(c, ctx, "get me", h.auth.State().Error, err)
	}

	user := h.auth.State().Value.User
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not signed in"})
	}

	return c.JSON(user)
}

func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	input := new(domain.PasswordResetRequest)
	if ok, err := h.parse(c, input); !ok {
		return err
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.auth.RequestPasswordReset(ctx, input.Email); err != nil {
		return h.fail(c, ctx, "request password reset", h.auth.State().Error, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "success"})
}

func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	input := new(domain.PasswordResetConfirm)
	if ok, err := h.parse(c, input); !ok {
		return err
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.auth.ConfirmPasswordReset(ctx, input.Token, input.Password); err != nil {
		return h.fail(c, ctx, "confirm password reset", h.auth.State().Error, err)
	}

	return c.JSON(fiber.Map{"status": "success"})
}
