package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/checkout"
	"github.com/sakashimaa/storefront/internal/service"
	"github.com/sakashimaa/storefront/internal/store"
)

// statusFor maps client, store and checkout errors onto shell status codes.
func statusFor(err error) int {
	var (
		verr   *checkout.ValidationError
		fields validator.ValidationErrors
	)

	switch {
	case errors.As(err, &verr),
		errors.As(err, &fields),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, apiclient.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apiclient.ErrSessionExpired),
		errors.Is(err, apiclient.ErrNoRefreshToken),
		errors.Is(err, apiclient.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apiclient.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apiclient.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apiclient.ErrConflict),
		errors.Is(err, store.ErrItemPending),
		errors.Is(err, store.ErrNotCancellable),
		errors.Is(err, checkout.ErrSubmitInFlight),
		errors.Is(err, checkout.ErrNotAtReview),
		errors.Is(err, checkout.ErrInvalidStep),
		errors.Is(err, checkout.ErrAlreadyComplete):
		return fiber.StatusConflict
	case errors.Is(err, apiclient.ErrServiceUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidResponse):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// errorBody renders msg, plus per-field messages for form errors.
func errorBody(msg string, err error) fiber.Map {
	body := fiber.Map{"error": msg}

	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}

	return body
}
