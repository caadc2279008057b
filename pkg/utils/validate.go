package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatValidationError renders validator failures as field -> message. Nested fields keep
// their path below the top-level struct, e.g. "shipping_address.city".
func FormatValidationError(err error) map[string]string {
	out := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		out["_"] = err.Error()
		return out
	}

	for _, err := range validationErrors {
		field := fieldPath(err)

		switch err.Tag() {
		case "required", "required_if":
			out[field] = fmt.Sprintf("%s is required", field)
		case "min":
			out[field] = fmt.Sprintf("%s must be at least %s characters", field, err.Param())
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "len":
			out[field] = fmt.Sprintf("%s must be exactly %s characters", field, err.Param())
		case "gt":
			out[field] = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "gte":
			out[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
		case "email":
			out[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "oneof":
			out[field] = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		case "url":
			out[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "cardnumber":
			out[field] = fmt.Sprintf("%s must be a valid card number", field)
		case "expiry":
			out[field] = fmt.Sprintf("%s must be a future date in MM/YY format", field)
		case "cvc":
			out[field] = fmt.Sprintf("%s must be 3 or 4 digits", field)
		case "postal":
			out[field] = fmt.Sprintf("%s must be a valid postal code", field)
		default:
			out[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return out
}

func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		ns = err.Field()
	}

	return strings.ToLower(ns)
}
