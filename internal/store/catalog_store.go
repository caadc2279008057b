package store

import (
	"context"

	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/service"
)

// CategoryStore and BrandStore cache the navigation lists for the session.
type CategoryStore struct {
	*container[[]domain.Category]
	svc  service.CategoryService
	deps Deps
}

func NewCategoryStore(svc service.CategoryService, deps Deps) *CategoryStore {
	return &CategoryStore{
		container: newContainer[[]domain.Category](nil, cloneSlice[domain.Category]),
		svc:       svc,
		deps:      deps.withDefaults(),
	}
}

func (s *CategoryStore) Load(ctx context.Context) error {
	ctx, span := startSpan(ctx, "CategoryStore.Load")
	defer span.End()

	done := s.startLoading()
	defer done()
	items, err := s.svc.List(ctx)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, "Failed to load categories.", err)
	}

	s.set(items)
	return nil
}

// BySlug looks in the loaded list first and asks the backend on a miss.
func (s *CategoryStore) BySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, c := range s.State().Value {
		if c.Slug == slug {
			return &c, nil
		}
	}

	return s.svc.GetBySlug(ctx, slug)
}

type BrandStore struct {
	*container[[]domain.Brand]
	svc  service.BrandService
	deps Deps
}

func NewBrandStore(svc service.BrandService, deps Deps) *BrandStore {
	return &BrandStore{
		container: newContainer[[]domain.Brand](nil, cloneSlice[domain.Brand]),
		svc:       svc,
		deps:      deps.withDefaults(),
	}
}

func (s *BrandStore) Load(ctx context.Context) error {
	ctx, span := startSpan(ctx, "BrandStore.Load")
	defer span.End()

	done := s.startLoading()
	defer done()
	items, err := s.svc.List(ctx)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, "Failed to load brands.", err)
	}

	s.set(items)
	return nil
}

func (s *BrandStore) BySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	for _, b := range s.State().Value {
		if b.Slug == slug {
			return &b, nil
		}
	}

	return s.svc.GetBySlug(ctx, slug)
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append([]T(nil), in...)
}
