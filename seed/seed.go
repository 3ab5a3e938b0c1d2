// Package seed loads the fixture catalogue and the demo account.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/auth"
	"storefront/events"
	"storefront/models"
	"storefront/store"
)

const (
	TestUserEmail    = "test@storefront.dev"
	TestUserPassword = "password123"
	TestUserName     = "Test User"
)

type Store interface {
	store.Users
	store.Catalog
}

// Invalidator drops cached catalogue responses.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Seeder struct {
	Store    Store
	Cache    Invalidator
	Events   events.Publisher
	Log      *slog.Logger
	Rand     *rand.Rand
	Now      func() time.Time
	HashCost int
}

// Run replaces the catalogue with the fixtures and upserts the test user.
// Cache invalidation and event publishing failures are logged, not returned.
func (s *Seeder) Run(ctx context.Context) ([]models.Product, error) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := auth.HashPassword(TestUserPassword, cost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: TestUserEmail, Password: hash, FullName: TestUserName}
	if err := s.Store.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("seed user: %w", err)
	}

	products := Products(user.ID, now().UTC().Truncate(time.Second), rng)
	if err := s.Store.ReplaceCatalog(ctx, products); err != nil {
		return nil, fmt.Errorf("seed catalogue: %w", err)
	}
	log.InfoContext(ctx, "catalogue seeded", "products", len(products), "user", user.Email)

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			log.WarnContext(ctx, "cache invalidation failed", "error", err)
		}
	}

	if s.Events != nil {
		for _, p := range products {
			if err := s.Events.Publish(ctx, events.NewProductEvent(events.EventProductCreated, p)); err != nil {
				log.WarnContext(ctx, "publish product event failed", "product", p.Name, "error", err)
			}
		}
	}

	return products, nil
}
