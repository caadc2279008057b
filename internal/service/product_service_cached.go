package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.uber.org/zap"
)

// cachedProductService reads product details through redis. The catalog is read-only from
// the storefront, so entries only expire by TTL.
type cachedProductService struct {
	next        ProductService
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      *zap.Logger
}

func NewCachedProductService(next ProductService, redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) ProductService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &cachedProductService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    ttl,
		logger:      logger,
	}
}

func (s *cachedProductService) List(ctx context.Context, filter domain.ProductFilter) (*domain.Page[domain.ProductListItem], error) {
	return s.next.List(ctx, filter)
}

func (s *cachedProductService) FindByID(ctx context.Context, id string) (*domain.ProductWithRelations, error) {
	return s.readThrough(ctx, fmt.Sprintf("product:%s", id), func() (*domain.ProductWithRelations, error) {
		return s.next.FindByID(ctx, id)
	})
}

func (s *cachedProductService) FindBySlug(ctx context.Context, slug string) (*domain.ProductWithRelations, error) {
	return s.readThrough(ctx, fmt.Sprintf("product:slug:%s", slug), func() (*domain.ProductWithRelations, error) {
		return s.next.FindBySlug(ctx, slug)
	})
}

func (s *cachedProductService) Featured(ctx context.Context, limit int) ([]domain.ProductListItem, error) {
	return s.next.Featured(ctx, limit)
}

func (s *cachedProductService) NewArrivals(ctx context.Context, limit int) ([]domain.ProductListItem, error) {
	return s.next.NewArrivals(ctx, limit)
}

func (s *cachedProductService) Bestsellers(ctx context.Context, limit int) ([]domain.ProductListItem, error) {
	return s.next.Bestsellers(ctx, limit)
}

func (s *cachedProductService) Search(ctx context.Context, query string, page, limit int) (*domain.Page[domain.ProductListItem], error) {
	return s.next.Search(ctx, query, page, limit)
}

func (s *cachedProductService) readThrough(
	ctx context.Context,
	key string,
	load func() (*domain.ProductWithRelations, error),
) (*domain.ProductWithRelations, error) {
	val, err := s.redisClient.Get(ctx, key).Bytes()
	if err == nil {
		var product domain.ProductWithRelations
		if err := json.Unmarshal(val, &product); err == nil {
			return &product, nil
		}

		mylogger.Warn(ctx, s.logger, "dropping undecodable cache entry", zap.String("key", key))
		s.redisClient.Del(ctx, key)
	}

	product, err := load()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(product)
	if err != nil {
		return product, nil
	}

	if err := s.redisClient.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		mylogger.Warn(ctx, s.logger, "failed to cache product", zap.String("key", key), zap.Error(err))
	}

	return product, nil
}
