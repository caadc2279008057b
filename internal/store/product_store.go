package store

import (
	"context"

	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/service"
)

const (
	msgProductsLoad = "Failed to load products."
	msgProductLoad  = "Failed to load product."
	msgSearch       = "Search failed. Please try again."
	railLimit       = 8
)

type ProductState struct {
	List        *domain.Page[domain.ProductListItem] `json:"list,omitempty"`
	Filter      domain.ProductFilter                 `json:"-"`
	Current     *domain.ProductWithRelations         `json:"current,omitempty"`
	Featured    []domain.ProductListItem             `json:"featured,omitempty"`
	NewArrivals []domain.ProductListItem             `json:"new_arrivals,omitempty"`
	Bestsellers []domain.ProductListItem             `json:"bestsellers,omitempty"`
	Query       string                               `json:"query,omitempty"`
	Results     *domain.Page[domain.ProductListItem] `json:"results,omitempty"`
}

func cloneProductState(s ProductState) ProductState {
	s.List = clonePage(s.List, nil)
	s.Current = clonePtr(s.Current, domain.ProductWithRelations.Clone)
	s.Featured = cloneSlice(s.Featured)
	s.NewArrivals = cloneSlice(s.NewArrivals)
	s.Bestsellers = cloneSlice(s.Bestsellers)
	s.Results = clonePage(s.Results, nil)
	return s
}

type ProductStore struct {
	*container[ProductState]
	svc  service.ProductService
	deps Deps
}

func NewProductStore(svc service.ProductService, deps Deps) *ProductStore {
	return &ProductStore{
		container: newContainer(ProductState{}, cloneProductState),
		svc:       svc,
		deps:      deps.withDefaults(),
	}
}

func (s *ProductStore) LoadList(ctx context.Context, filter domain.ProductFilter) error {
	ctx, span := startSpan(ctx, "ProductStore.LoadList")
	defer span.End()

	done := s.startLoading()
	defer done()
	page, err := s.svc.List(ctx, filter)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgProductsLoad, err)
	}

	s.update(func(st *Snapshot[ProductState]) {
		st.Value.List = page
		st.Value.Filter = filter
	})
	return nil
}

func (s *ProductStore) LoadBySlug(ctx context.Context, slug string) error {
	ctx, span := startSpan(ctx, "ProductStore.LoadBySlug")
	defer span.End()

	done := s.startLoading()
	defer done()
	product, err := s.svc.FindBySlug(ctx, slug)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgProductLoad, err)
	}

	s.update(func(st *Snapshot[ProductState]) {
		st.Value.Current = product
	})
	return nil
}

func (s *ProductStore) LoadFeatured(ctx context.Context) error {
	return s.loadRail(ctx, "ProductStore.LoadFeatured", s.svc.Featured, func(st *ProductState, items []domain.ProductListItem) {
		st.Featured = items
	})
}

func (s *ProductStore) LoadNewArrivals(ctx context.Context) error {
	return s.loadRail(ctx, "ProductStore.LoadNewArrivals", s.svc.NewArrivals, func(st *ProductState, items []domain.ProductListItem) {
		st.NewArrivals = items
	})
}

func (s *ProductStore) LoadBestsellers(ctx context.Context) error {
	return s.loadRail(ctx, "ProductStore.LoadBestsellers", s.svc.Bestsellers, func(st *ProductState, items []domain.ProductListItem) {
		st.Bestsellers = items
	})
}

func (s *ProductStore) Search(ctx context.Context, query string, page, limit int) error {
	ctx, span := startSpan(ctx, "ProductStore.Search")
	defer span.End()

	done := s.startLoading()
	defer done()
	results, err := s.svc.Search(ctx, query, page, limit)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgSearch, err)
	}

	s.update(func(st *Snapshot[ProductState]) {
		st.Value.Query = query
		st.Value.Results = results
	})
	return nil
}

func (s *ProductStore) loadRail(
	ctx context.Context,
	name string,
	load func(ctx context.Context, limit int) ([]domain.ProductListItem, error),
	assign func(st *ProductState, items []domain.ProductListItem),
) error {
	ctx, span := startSpan(ctx, name)
	defer span.End()

	done := s.startLoading()
	defer done()
	items, err := load(ctx, railLimit)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgProductsLoad, err)
	}

	s.update(func(st *Snapshot[ProductState]) {
		assign(&st.Value, items)
	})
	return nil
}
