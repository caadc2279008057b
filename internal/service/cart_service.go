package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/domain"
)

type CartService interface {
	Get(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, req *domain.AddItemRequest) error
	UpdateItem(ctx context.Context, itemID string, req *domain.UpdateItemRequest) (*domain.Cart, error)
	RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context) error
	ApplyCoupon(ctx context.Context, req *domain.ApplyCouponRequest) error
	RemoveCoupon(ctx context.Context) error
}

type cartService struct {
	api   API
	check checker
}

func NewCartService(api API, validate *validator.Validate) CartService {
	return &cartService{
		api:   api,
		check: checker{validate: validate},
	}
}

func (s *cartService) Get(ctx context.Context) (*domain.Cart, error) {
	return s.cart(ctx, apiclient.Request{Method: http.MethodGet, Path: "/carts"})
}

func (s *cartService) AddItem(ctx context.Context, req *domain.AddItemRequest) error {
	if err := s.check.input(req); err != nil {
		return err
	}

	return s.api.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: "/carts/items", Body: req}, nil)
}

func (s *cartService) UpdateItem(ctx context.Context, itemID string, req *domain.UpdateItemRequest) (*domain.Cart, error) {
	if err := s.check.input(req); err != nil {
		return nil, err
	}

	return s.cart(ctx, apiclient.Request{
		Method: http.MethodPatch,
		Path:   "/carts/items/" + url.PathEscape(itemID),
		Body:   req,
	})
}

func (s *cartService) RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	return s.cart(ctx, apiclient.Request{
		Method: http.MethodDelete,
		Path:   "/carts/items/" + url.PathEscape(itemID),
	})
}

func (s *cartService) Clear(ctx context.Context) error {
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: "/carts"}, nil)
}

func (s *cartService) ApplyCoupon(ctx context.Context, req *domain.ApplyCouponRequest) error {
	if err := s.check.input(req); err != nil {
		return err
	}

	return s.api.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: "/carts/apply-coupon", Body: req}, nil)
}

func (s *cartService) RemoveCoupon(ctx context.Context) error {
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: "/carts/apply-coupon"}, nil)
}

func (s *cartService) cart(ctx context.Context, req apiclient.Request) (*domain.Cart, error) {
	var cart domain.Cart
	if err := s.api.Do(ctx, req, &cart); err != nil {
		return nil, err
	}

	if err := s.check.response("cart", &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}
