package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sakashimaa/storefront/internal/apiclient"
)

// API is the slice of *apiclient.Client the services depend on.
type API interface {
	Do(ctx context.Context, req apiclient.Request, out interface{}) error
}

// NewValidator reports fields under their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	return v
}

type checker struct {
	validate *validator.Validate
}

func (c checker) input(in interface{}) error {
	if err := c.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return nil
}

func (c checker) response(what string, out interface{}) error {
	if err := c.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidResponse, what, err)
	}

	return nil
}

func checkEach[T any](c checker, what string, items []T) error {
	for i := range items {
		if err := c.response(what, &items[i]); err != nil {
			return err
		}
	}

	return nil
}
