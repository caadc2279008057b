package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/domain"
)

type AddressService interface {
	List(ctx context.Context) ([]domain.Address, error)
	Get(ctx context.Context, id string) (*domain.Address, error)
	Create(ctx context.Context, input *domain.AddressInput) (*domain.Address, error)
	Update(ctx context.Context, id string, input *domain.AddressInput) (*domain.Address, error)
	Delete(ctx context.Context, id string) error
	SetDefault(ctx context.Context, id string) (*domain.Address, error)
}

type addressService struct {
	api   API
	check checker
}

func NewAddressService(api API, validate *validator.Validate) AddressService {
	return &addressService{
		api:   api,
		check: checker{validate: validate},
	}
}

func (s *addressService) List(ctx context.Context) ([]domain.Address, error) {
	var res []domain.Address
	if err := s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/addresses"}, &res); err != nil {
		return nil, err
	}

	if err := checkEach(s.check, "address", res); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *addressService) Get(ctx context.Context, id string) (*domain.Address, error) {
	return s.address(ctx, apiclient.Request{Method: http.MethodGet, Path: addressPath(id)})
}

func (s *addressService) Create(ctx context.Context, input *domain.AddressInput) (*domain.Address, error) {
	if err := s.check.input(input); err != nil {
		return nil, err
	}

	return s.address(ctx, apiclient.Request{Method: http.MethodPost, Path: "/addresses", Body: input})
}

func (s *addressService) Update(ctx context.Context, id string, input *domain.AddressInput) (*domain.Address, error) {
	if err := s.check.input(input); err != nil {
		return nil, err
	}

	return s.address(ctx, apiclient.Request{Method: http.MethodPut, Path: addressPath(id), Body: input})
}

func (s *addressService) Delete(ctx context.Context, id string) error {
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: addressPath(id)}, nil)
}

func (s *addressService) SetDefault(ctx context.Context, id string) (*domain.Address, error) {
	return s.address(ctx, apiclient.Request{Method: http.MethodPut, Path: addressPath(id) + "/default"})
}

func (s *addressService) address(ctx context.Context, req apiclient.Request) (*domain.Address, error) {
	var address domain.Address
	if err := s.api.Do(ctx, req, &address); err != nil {
		return nil, err
	}

	if err := s.check.response("address", &address); err != nil {
		return nil, err
	}

	return &address, nil
}

func addressPath(id string) string {
	return "/addresses/" + url.PathEscape(id)
}
