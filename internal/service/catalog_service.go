package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/domain"
)

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type BrandService interface {
	List(ctx context.Context) ([]domain.Brand, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Brand, error)
}

type categoryService struct {
	api   API
	check checker
}

func NewCategoryService(api API, validate *validator.Validate) CategoryService {
	return &categoryService{api: api, check: checker{validate: validate}}
}

func (s *categoryService) List(ctx context.Context) ([]domain.Category, error) {
	return list[domain.Category](ctx, s.api, s.check, "/categories")
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return one[domain.Category](ctx, s.api, s.check, "/categories/slug/"+url.PathEscape(slug))
}

type brandService struct {
	api   API
	check checker
}

func NewBrandService(api API, validate *validator.Validate) BrandService {
	return &brandService{api: api, check: checker{validate: validate}}
}

func (s *brandService) List(ctx context.Context) ([]domain.Brand, error) {
	return list[domain.Brand](ctx, s.api, s.check, "/brands")
}

func (s *brandService) GetBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	return one[domain.Brand](ctx, s.api, s.check, "/brands/slug/"+url.PathEscape(slug))
}

func list[T any](ctx context.Context, api API, check checker, path string) ([]T, error) {
	var res []T
	if err := api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: path}, &res); err != nil {
		return nil, err
	}

	if err := checkEach(check, path, res); err != nil {
		return nil, err
	}

	return res, nil
}

func one[T any](ctx context.Context, api API, check checker, path string) (*T, error) {
	var res T
	if err := api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: path}, &res); err != nil {
		return nil, err
	}

	if err := check.response(path, &res); err != nil {
		return nil, err
	}

	return &res, nil
}
