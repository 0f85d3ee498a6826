package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gosimple/slug"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/store"
)

const (
	activeProductsKey = "catalog:active_products"
	cacheTTL          = 5 * time.Minute
)

// Service serves the product catalog, caching the public active-product
// listing in redis. The cache is best effort: a redis failure falls back
// to the store.
type Service struct {
	store store.Store
	redis *redis.Client
}

// NewService creates a catalog service. redisClient may be nil to disable
// caching.
func NewService(st store.Store, redisClient *redis.Client) *Service {
	return &Service{store: st, redis: redisClient}
}

// ActiveProducts returns the purchasable catalog, from cache when possible.
func (s *Service) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, activeProductsKey).Bytes(); err == nil {
			var products []models.Product
			if err := json.Unmarshal(data, &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := s.store.ListProducts(true)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(products); err == nil {
			if err := s.redis.Set(ctx, activeProductsKey, data, cacheTTL).Err(); err != nil {
				log.Printf("catalog: failed to cache products: %v", err)
			}
		}
	}
	return products, nil
}

// CreateProduct adds a product to the catalog and invalidates the cache.
func (s *Service) CreateProduct(ctx context.Context, product *models.Product) error {
	product.Slug = slug.Make(product.Name)
	product.TotalReturn = product.DailyIncome * float64(product.CycleDays)
	if err := s.store.CreateProduct(product); err != nil {
		return fmt.Errorf("error creating product: %w", err)
	}
	s.Invalidate(ctx)
	return nil
}

// UpdateProduct saves catalog changes and invalidates the cache. Holdings
// keep the snapshot they were purchased with.
func (s *Service) UpdateProduct(ctx context.Context, product *models.Product) error {
	product.Slug = slug.Make(product.Name)
	product.TotalReturn = product.DailyIncome * float64(product.CycleDays)
	if err := s.store.SaveProduct(product); err != nil {
		return fmt.Errorf("error updating product: %w", err)
	}
	s.Invalidate(ctx)
	return nil
}

// DeleteProduct removes a product from the catalog and invalidates the cache.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.store.DeleteProduct(id); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached product listing.
func (s *Service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, activeProductsKey).Err(); err != nil {
		log.Printf("catalog: failed to invalidate product cache: %v", err)
	}
}
