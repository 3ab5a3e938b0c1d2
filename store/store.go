// Package store persists the catalogue and user accounts.
package store

import (
	"context"
	"errors"

	"storefront/filter"
	"storefront/models"
)

var ErrEmailTaken = errors.New("email already registered")

// Products reads the catalogue. Lookups that find nothing return false with
// a nil error.
type Products interface {
	ListProducts(ctx context.Context, q filter.Query) ([]models.Product, error)
	CountProducts(ctx context.Context, where filter.Predicate) (int, error)
	GetProduct(ctx context.Context, id string) (*models.Product, bool, error)
	Facets(ctx context.Context, where filter.Predicate) (models.FacetsResponse, error)
}

type Users interface {
	// CreateUser assigns u.ID and u.CreatedAt. It returns ErrEmailTaken when
	// the email is already registered.
	CreateUser(ctx context.Context, u *models.User) error
	// UpsertUser creates u or overwrites the account with the same email.
	UpsertUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, bool, error)
	UserByID(ctx context.Context, id string) (*models.User, bool, error)
}

// Catalog replaces the whole catalogue in one step. Reviews must reference
// existing users.
type Catalog interface {
	ReplaceCatalog(ctx context.Context, products []models.Product) error
}

type Store interface {
	Products
	Users
	Catalog
}
