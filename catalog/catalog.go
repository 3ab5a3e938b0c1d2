// Package catalog serves product listings, single products, recommendations
// and facets on top of a store, with an optional response cache.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"storefront/cache"
	"storefront/filter"
	"storefront/models"
	"storefront/store"
)

// RecommendationCount caps the number of recommended products.
const RecommendationCount = 4

type Service struct {
	products store.Products
	cache    cache.Cache
	ttl      time.Duration
	intn     func(n int) int
	log      *slog.Logger
}

type Option func(*Service)

func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithRand replaces the source of recommendation offsets. intn must return a
// value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Service) { s.intn = intn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(products store.Products, opts ...Option) *Service {
	s := &Service{
		products: products,
		cache:    cache.Nop{},
		ttl:      5 * time.Minute,
		intn:     rand.Intn,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of products matching c and the total match count.
// The second result reports whether the page came from the cache.
func (s *Service) List(ctx context.Context, c filter.Criteria) (models.ProductsResponse, bool, error) {
	q := filter.Compile(c)
	key := listKey(c, q)

	var resp models.ProductsResponse
	if err := s.cache.Get(ctx, key, &resp); err == nil {
		return resp, true, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.WarnContext(ctx, "product list cache read failed", "key", key, "error", err)
	}

	products, err := s.products.ListProducts(ctx, q)
	if err != nil {
		return resp, false, err
	}
	total, err := s.products.CountProducts(ctx, q.Where)
	if err != nil {
		return resp, false, err
	}

	resp = models.ProductsResponse{Products: products, Total: total, Skip: q.Skip, Take: q.Take}
	if err := s.cache.Set(ctx, key, resp, s.ttl); err != nil {
		s.log.WarnContext(ctx, "product list cache write failed", "key", key, "error", err)
	}
	return resp, false, nil
}

// Product returns the full record for id. A missing product is reported as
// false with a nil error.
func (s *Service) Product(ctx context.Context, id string) (*models.Product, bool, error) {
	key := fmt.Sprintf(cache.ProductDetailKey, id)

	var cached models.Product
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, true, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.WarnContext(ctx, "product cache read failed", "key", key, "error", err)
	}

	p, ok, err := s.products.GetProduct(ctx, id)
	if err != nil || !ok {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, key, p, s.ttl); err != nil {
		s.log.WarnContext(ctx, "product cache write failed", "key", key, "error", err)
	}
	return p, true, nil
}

// Recommendations picks up to RecommendationCount other products starting at
// a random offset into the newest-first catalogue. The offset is drawn from
// [0, total-RecommendationCount) and is zero for small catalogues.
func (s *Service) Recommendations(ctx context.Context, id string) ([]models.Product, error) {
	total, err := s.products.CountProducts(ctx, filter.And{})
	if err != nil {
		return nil, err
	}

	offset := 0
	if span := total - RecommendationCount; span > 0 {
		offset = s.intn(span)
	}

	return s.products.ListProducts(ctx, filter.Query{
		Where: filter.Excluding(id),
		Skip:  offset,
		Take:  RecommendationCount,
		Order: filter.OrderNewest,
		Shape: filter.ShapeThumbnail,
	})
}

// Facets counts the products matching c per category, gender and sport, and
// reports their price range. Pagination fields of c are ignored.
func (s *Service) Facets(ctx context.Context, c filter.Criteria) (models.FacetsResponse, error) {
	return s.products.Facets(ctx, filter.Compile(c).Where)
}

// Invalidate drops every cached listing and product.
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.cache.DeleteByPattern(ctx, cache.ProductListPattern); err != nil {
		return fmt.Errorf("invalidate listings: %w", err)
	}
	if err := s.cache.DeleteByPattern(ctx, cache.ProductDetailPattern); err != nil {
		return fmt.Errorf("invalidate products: %w", err)
	}
	return nil
}

// listKey identifies a page by its criteria with the effective window, so
// "no take" and "take=20" share an entry.
func listKey(c filter.Criteria, q filter.Query) string {
	v := c.Values()
	v.Set(filter.KeySkip, strconv.Itoa(q.Skip))
	v.Set(filter.KeyTake, strconv.Itoa(q.Take))
	return fmt.Sprintf(cache.ProductListKey, v.Encode())
}
