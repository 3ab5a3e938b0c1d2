package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/filter"
	"storefront/models"
)

// Memory is an in-process Store used by tests and by the server when no
// database is configured.
type Memory struct {
	mu       sync.RWMutex
	products []models.Product
	users    map[string]models.User
	byEmail  map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		users:   map[string]models.User{},
		byEmail: map[string]string{},
	}
}

func (m *Memory) ListProducts(ctx context.Context, q filter.Query) ([]models.Product, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := m.matching(q.Where)
	sortNewest(matched)

	start, end := window(len(matched), q.Skip, q.Take)
	out := make([]models.Product, 0, end-start)
	for _, p := range matched[start:end] {
		out = append(out, shapeProduct(p, q.Shape))
	}
	return out, nil
}

func (m *Memory) CountProducts(ctx context.Context, where filter.Predicate) (int, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.matching(where)), nil
}

func (m *Memory) GetProduct(ctx context.Context, id string) (*models.Product, bool, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.ID != id {
			continue
		}
		out := cloneProduct(p)
		for i := range out.Reviews {
			out.Reviews[i].User.FullName = m.users[out.Reviews[i].UserID].FullName
		}
		return &out, true, nil
	}
	return nil, false, nil
}

func (m *Memory) Facets(ctx context.Context, where filter.Predicate) (models.FacetsResponse, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	categories := map[string]int{}
	genders := map[string]int{}
	sports := map[string]int{}
	var out models.FacetsResponse

	for _, p := range m.matching(where) {
		if p.Category != "" {
			categories[p.Category]++
		}
		if v := models.Deref(p.Gender); v != "" {
			genders[v]++
		}
		if v := models.Deref(p.Sport); v != "" {
			sports[v]++
		}
		price := p.Price
		if out.PriceRange.Min == nil || price < *out.PriceRange.Min {
			out.PriceRange.Min = &price
		}
		if out.PriceRange.Max == nil || price > *out.PriceRange.Max {
			out.PriceRange.Max = &price
		}
	}

	out.Categories = facetList(categories)
	out.Genders = facetList(genders)
	out.Sports = facetList(sports)
	return out, nil
}

func (m *Memory) ReplaceCatalog(ctx context.Context, products []models.Product) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range products {
		for _, r := range p.Reviews {
			if _, ok := m.users[r.UserID]; !ok {
				return fmt.Errorf("product %s: review author %q does not exist", p.Name, r.UserID)
			}
		}
	}
	m.products = prepareCatalog(products, time.Now())
	return nil
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(u.Email)
	if _, ok := m.byEmail[email]; ok {
		return fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}
	m.insertUser(u, email)
	return nil
}

func (m *Memory) UpsertUser(ctx context.Context, u *models.User) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(u.Email)
	if id, ok := m.byEmail[email]; ok {
		existing := m.users[id]
		existing.FullName = u.FullName
		existing.Password = u.Password
		m.users[id] = existing
		*u = existing
		return nil
	}
	m.insertUser(u, email)
	return nil
}

func (m *Memory) insertUser(u *models.User, email string) {
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt = time.Now()
	m.users[u.ID] = *u
	m.byEmail[email] = u.ID
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, false, nil
	}
	u := m.users[id]
	return &u, true, nil
}

func (m *Memory) UserByID(ctx context.Context, id string) (*models.User, bool, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

// matching returns copies of the products that satisfy where. Callers hold mu.
func (m *Memory) matching(where filter.Predicate) []models.Product {
	out := make([]models.Product, 0, len(m.products))
	for i := range m.products {
		if filter.Match(where, productRow{p: &m.products[i]}) {
			out = append(out, m.products[i])
		}
	}
	return out
}

