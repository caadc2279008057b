package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/domain"
)

type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter) (*domain.Page[domain.ProductListItem], error)
	FindByID(ctx context.Context, id string) (*domain.ProductWithRelations, error)
	FindBySlug(ctx context.Context, slug string) (*domain.ProductWithRelations, error)
	Featured(ctx context.Context, limit int) ([]domain.ProductListItem, error)
	NewArrivals(ctx context.Context, limit int) ([]domain.ProductListItem, error)
	Bestsellers(ctx context.Context, limit int) ([]domain.ProductListItem, error)
	Search(ctx context.Context, query string, page, limit int) (*domain.Page[domain.ProductListItem], error)
}

type productService struct {
	api   API
	check checker
}

func NewProductService(api API, validate *validator.Validate) ProductService {
	return &productService{
		api:   api,
		check: checker{validate: validate},
	}
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter) (*domain.Page[domain.ProductListItem], error) {
	if err := s.check.input(&filter); err != nil {
		return nil, err
	}

	return s.page(ctx, "/products", filterQuery(filter))
}

func (s *productService) FindByID(ctx context.Context, id string) (*domain.ProductWithRelations, error) {
	return s.detail(ctx, "/products/"+url.PathEscape(id))
}

func (s *productService) FindBySlug(ctx context.Context, slug string) (*domain.ProductWithRelations, error) {
	return s.detail(ctx, "/products/slug/"+url.PathEscape(slug))
}

func (s *productService) Featured(ctx context.Context, limit int) ([]domain.ProductListItem, error) {
	return s.rail(ctx, "/products/featured", limit)
}

func (s *productService) NewArrivals(ctx context.Context, limit int) ([]domain.ProductListItem, error) {
	return s.rail(ctx, "/products/new-arrivals", limit)
}

func (s *productService) Bestsellers(ctx context.Context, limit int) ([]domain.ProductListItem, error) {
	return s.rail(ctx, "/products/bestsellers", limit)
}

func (s *productService) Search(ctx context.Context, query string, page, limit int) (*domain.Page[domain.ProductListItem], error) {
	if query == "" {
		return nil, ErrInvalidInput
	}

	params := url.Values{}
	params.Set("q", query)
	setPaging(params, page, limit)

	return s.page(ctx, "/products/search", params)
}

func (s *productService) page(ctx context.Context, path string, query url.Values) (*domain.Page[domain.ProductListItem], error) {
	var res domain.Page[domain.ProductListItem]
	if err := s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: path, Query: query}, &res); err != nil {
		return nil, err
	}

	if err := s.check.response("product page", &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (s *productService) detail(ctx context.Context, path string) (*domain.ProductWithRelations, error) {
	var res domain.ProductWithRelations
	if err := s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: path}, &res); err != nil {
		return nil, err
	}

	if err := s.check.response("product", &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (s *productService) rail(ctx context.Context, path string, limit int) ([]domain.ProductListItem, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var res []domain.ProductListItem
	if err := s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: path, Query: params}, &res); err != nil {
		return nil, err
	}

	if err := checkEach(s.check, "product", res); err != nil {
		return nil, err
	}

	return res, nil
}

func filterQuery(filter domain.ProductFilter) url.Values {
	params := url.Values{}
	setPaging(params, filter.Page, filter.Limit)

	if filter.CategoryID != "" {
		params.Set("category_id", filter.CategoryID)
	}
	if filter.BrandID != "" {
		params.Set("brand_id", filter.BrandID)
	}
	if filter.MinPrice != nil {
		params.Set("min_price", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		params.Set("max_price", filter.MaxPrice.String())
	}
	if filter.Sort != "" {
		params.Set("sort", string(filter.Sort))
	}
	if filter.InStock {
		params.Set("in_stock", "true")
	}

	return params
}

func setPaging(params url.Values, page, limit int) {
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
}
