package store

import (
	"context"

	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/service"
)

const (
	msgAddressesLoad  = "Failed to load addresses."
	msgAddressSave    = "Failed to save address. Please try again."
	msgAddressDelete  = "Failed to delete address. Please try again."
	msgAddressDefault = "Failed to set default address. Please try again."
)

// AddressStore reloads the list after every mutation: the backend owns the single-default rule.
type AddressStore struct {
	*container[[]domain.Address]
	svc  service.AddressService
	deps Deps
}

func NewAddressStore(svc service.AddressService, deps Deps) *AddressStore {
	return &AddressStore{
		container: newContainer[[]domain.Address](nil, cloneSlice[domain.Address]),
		svc:       svc,
		deps:      deps.withDefaults(),
	}
}

func (s *AddressStore) Load(ctx context.Context) error {
	ctx, span := startSpan(ctx, "AddressStore.Load")
	defer span.End()

	done := s.startLoading()
	defer done()
	items, err := s.svc.List(ctx)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgAddressesLoad, err)
	}

	s.set(items)
	return nil
}

func (s *AddressStore) Create(ctx context.Context, input *domain.AddressInput) (*domain.Address, error) {
	ctx, span := startSpan(ctx, "AddressStore.Create")
	defer span.End()

	done := s.startLoading()
	defer done()
	address, err := s.svc.Create(ctx, input)
	if err != nil {
		return nil, fail(ctx, s.deps, s.container, span, msgAddressSave, err)
	}

	return address, s.reload(ctx)
}

func (s *AddressStore) Update(ctx context.Context, id string, input *domain.AddressInput) (*domain.Address, error) {
	ctx, span := startSpan(ctx, "AddressStore.Update")
	defer span.End()

	done := s.startLoading()
	defer done()
	address, err := s.svc.Update(ctx, id, input)
	if err != nil {
		return nil, fail(ctx, s.deps, s.container, span, msgAddressSave, err)
	}

	return address, s.reload(ctx)
}

func (s *AddressStore) Delete(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, "AddressStore.Delete")
	defer span.End()

	done := s.startLoading()
	defer done()
	if err := s.svc.Delete(ctx, id); err != nil {
		return fail(ctx, s.deps, s.container, span, msgAddressDelete, err)
	}

	return s.reload(ctx)
}

func (s *AddressStore) SetDefault(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, "AddressStore.SetDefault")
	defer span.End()

	done := s.startLoading()
	defer done()
	if _, err := s.svc.SetDefault(ctx, id); err != nil {
		return fail(ctx, s.deps, s.container, span, msgAddressDefault, err)
	}

	return s.reload(ctx)
}

// Default returns the address flagged as default in the loaded list, or nil.
func (s *AddressStore) Default() *domain.Address {
	for _, a := range s.State().Value {
		if a.IsDefault {
			return &a
		}
	}

	return nil
}

func (s *AddressStore) reload(ctx context.Context) error {
	ctx, span := startSpan(ctx, "AddressStore.reload")
	defer span.End()

	items, err := s.svc.List(ctx)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgAddressesLoad, err)
	}

	s.set(items)
	return nil
}
