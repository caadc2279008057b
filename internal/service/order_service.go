package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/domain"
)

type OrderService interface {
	List(ctx context.Context, page, limit int) (*domain.Page[domain.Order], error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	// Create sends the order once. idempotencyKey lets the backend drop a duplicate submit.
	Create(ctx context.Context, req *domain.CreateOrderRequest, idempotencyKey string) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
}

type orderService struct {
	api   API
	check checker
}

func NewOrderService(api API, validate *validator.Validate) OrderService {
	return &orderService{
		api:   api,
		check: checker{validate: validate},
	}
}

func (s *orderService) List(ctx context.Context, page, limit int) (*domain.Page[domain.Order], error) {
	params := url.Values{}
	setPaging(params, page, limit)

	var res domain.Page[domain.Order]
	if err := s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/orders", Query: params}, &res); err != nil {
		return nil, err
	}

	if err := s.check.response("order page", &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.order(ctx, apiclient.Request{Method: http.MethodGet, Path: "/orders/" + url.PathEscape(id)})
}

func (s *orderService) Create(ctx context.Context, req *domain.CreateOrderRequest, idempotencyKey string) (*domain.Order, error) {
	if err := s.check.input(req); err != nil {
		return nil, err
	}

	header := http.Header{}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	return s.order(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/orders",
		Body:   req,
		Header: header,
	})
}

func (s *orderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	return s.order(ctx, apiclient.Request{Method: http.MethodPost, Path: "/orders/" + url.PathEscape(id) + "/cancel"})
}

func (s *orderService) order(ctx context.Context, req apiclient.Request) (*domain.Order, error) {
	var order domain.Order
	if err := s.api.Do(ctx, req, &order); err != nil {
		return nil, err
	}

	if err := s.check.response("order", &order); err != nil {
		return nil, err
	}

	return &order, nil
}
