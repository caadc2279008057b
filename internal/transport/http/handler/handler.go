package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"github.com/sakashimaa/storefront/pkg/utils"
	"go.uber.org/zap"
)

const defaultTimeout = 4 * time.Second

// base carries what every handler needs: the logger, the body validator and the per-request
// deadline for backend calls.
type base struct {
	logger   *zap.Logger
	validate *validator.Validate
	timeout  time.Duration
}

func newBase(logger *zap.Logger, validate *validator.Validate, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return base{logger: logger, validate: validate, timeout: timeout}
}

func (b base) context(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), b.timeout)
}

// parse decodes and validates the body into dst. On failure the 400 response has already
// been written and ok is false.
func (b base) parse(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		mylogger.Warn(
			c.UserContext(),
			b.logger,
			"body parsing error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := b.validate.Struct(dst); err != nil {
		mylogger.Info(
			c.UserContext(),
			b.logger,
			"validation failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": utils.FormatValidationError(err),
		})
	}

	return true, nil
}

// fail logs err and renders msg with the status mapped from err.
func (b base) fail(c *fiber.Ctx, ctx context.Context, action, msg string, err error) error {
	httpCode := statusFor(err)

	mylogger.Warn(
		ctx,
		b.logger,
		action+" failed",
		zap.Int("http_code", httpCode),
		zap.Error(err),
	)

	if msg == "" {
		msg = err.Error()
	}

	return c.Status(httpCode).JSON(errorBody(msg, err))
}
