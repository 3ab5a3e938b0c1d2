package catalog_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/cache"
	"storefront/catalog"
	"storefront/filter"
	"storefront/models"
	"storefront/seed"
	"storefront/store"
)

func seeded(t *testing.T) (*store.Memory, []models.Product) {
	t.Helper()
	mem := store.NewMemory()
	s := &seed.Seeder{Store: mem, HashCost: bcrypt.MinCost, Rand: rand.New(rand.NewSource(1))}
	products, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return mem, products
}

func intPtr(i int) *int { return &i }

func TestListWindowDoesNotAffectTotal(t *testing.T) {
	mem, _ := seeded(t)
	svc := catalog.NewService(mem)

	resp, _, err := svc.List(context.Background(), filter.Criteria{Skip: intPtr(10), Take: intPtr(5)})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Products) != 3 || resp.Total != 13 || resp.Skip != 10 || resp.Take != 5 {
		t.Fatalf("got %d products total=%d skip=%d take=%d, want 3/13/10/5",
			len(resp.Products), resp.Total, resp.Skip, resp.Take)
	}
}

func TestListDefaultsAndShape(t *testing.T) {
	mem, _ := seeded(t)
	svc := catalog.NewService(mem)

	resp, _, err := svc.List(context.Background(), filter.Criteria{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Skip != 0 || resp.Take != 20 || len(resp.Products) != 13 {
		t.Fatalf("skip=%d take=%d len=%d", resp.Skip, resp.Take, len(resp.Products))
	}

	newest := resp.Products[0]
	if newest.Name != "Nike Air Max 90 Future" {
		t.Fatalf("first product = %s, want newest fixture", newest.Name)
	}
	if len(newest.Images) != 1 || !newest.Images[0].IsPrimary {
		t.Fatalf("listing images = %+v, want primary only", newest.Images)
	}
	if len(newest.Colors) != 6 {
		t.Fatalf("listing colors = %d, want 6", len(newest.Colors))
	}
	for _, s := range newest.Sizes {
		if !s.InStock {
			t.Fatalf("listing carries out-of-stock size %s", s.Size)
		}
	}
	if newest.Details != nil || newest.Reviews != nil {
		t.Fatal("listing carries details or reviews")
	}
}

func TestListFilters(t *testing.T) {
	mem, _ := seeded(t)
	svc := catalog.NewService(mem)
	min, max := 100.0, 120.0

	tests := []struct {
		name string
		c    filter.Criteria
		want int
	}{
		{"gender", filter.Criteria{Gender: "Women"}, 5},
		{"sport", filter.Criteria{Sport: "Skateboarding"}, 1},
		{"shoe height", filter.Criteria{ShoeHeight: "Mid Top"}, 1},
		{"price inclusive", filter.Criteria{MinPrice: &min, MaxPrice: &max}, 5},
		{"search", filter.Criteria{Search: "dunk"}, 2},
		{"sold out size", filter.Criteria{Size: "11.5"}, 0},
		{"in stock size", filter.Criteria{Size: "9"}, 13},
		{"color", filter.Criteria{Color: "variant"}, 1},
		{"category", filter.Criteria{Category: "training"}, 1},
		{"empty range", filter.Criteria{MinPrice: &max, MaxPrice: &min}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _, err := svc.List(context.Background(), tt.c)
			if err != nil {
				t.Fatal(err)
			}
			if resp.Total != tt.want || len(resp.Products) != tt.want {
				t.Fatalf("total=%d len=%d, want %d", resp.Total, len(resp.Products), tt.want)
			}
		})
	}
}

func TestListCache(t *testing.T) {
	mem, _ := seeded(t)
	c := cache.NewMemory()
	svc := catalog.NewService(mem, catalog.WithCache(c, time.Minute))
	ctx := context.Background()

	if _, hit, err := svc.List(ctx, filter.Criteria{Gender: "Men"}); err != nil || hit {
		t.Fatalf("first call hit=%v err=%v, want miss", hit, err)
	}
	resp, hit, err := svc.List(ctx, filter.Criteria{Gender: "Men", Take: intPtr(20)})
	if err != nil || !hit {
		t.Fatalf("second call hit=%v err=%v, want hit", hit, err)
	}
	if resp.Total != 6 {
		t.Fatalf("cached total = %d, want 6", resp.Total)
	}

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := svc.List(ctx, filter.Criteria{Gender: "Men"}); hit {
		t.Fatal("hit after invalidation")
	}
}

func TestProduct(t *testing.T) {
	mem, products := seeded(t)
	svc := catalog.NewService(mem)
	ctx := context.Background()

	featured := products[12]
	p, ok, err := svc.Product(ctx, featured.ID)
	if err != nil || !ok {
		t.Fatalf("Product: ok=%v err=%v", ok, err)
	}
	if len(p.Images) != 8 || len(p.Colors) != 6 || len(p.Sizes) != 11 || len(p.Details) != 3 || len(p.Reviews) != 2 {
		t.Fatalf("full product incomplete: images=%d colors=%d sizes=%d details=%d reviews=%d",
			len(p.Images), len(p.Colors), len(p.Sizes), len(p.Details), len(p.Reviews))
	}
	if p.Reviews[0].User.FullName != seed.TestUserName {
		t.Fatalf("review author = %q", p.Reviews[0].User.FullName)
	}

	p, ok, err = svc.Product(ctx, "missing")
	if err != nil || ok || p != nil {
		t.Fatalf("missing product = %v, %v, %v; want nil, false, nil", p, ok, err)
	}
}

func TestRecommendations(t *testing.T) {
	mem, products := seeded(t)
	ctx := context.Background()
	self := products[12].ID

	for offset := 0; offset < 9; offset++ {
		var span int
		svc := catalog.NewService(mem, catalog.WithRand(func(n int) int {
			span = n
			return offset
		}))

		recs, err := svc.Recommendations(ctx, self)
		if err != nil {
			t.Fatal(err)
		}
		if span != 9 {
			t.Fatalf("offset drawn from [0,%d), want [0,9)", span)
		}
		if len(recs) != catalog.RecommendationCount {
			t.Fatalf("offset %d: %d recommendations, want 4", offset, len(recs))
		}
		for _, r := range recs {
			if r.ID == self {
				t.Fatalf("offset %d: recommended the product itself", offset)
			}
			if len(r.Images) != 1 || r.Colors != nil || r.Sizes != nil {
				t.Fatalf("recommendation shape = images %d colors %v sizes %v", len(r.Images), r.Colors, r.Sizes)
			}
		}
	}
}

func TestRecommendationsSmallCatalogue(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	products := seed.Products("", time.Now(), rand.New(rand.NewSource(1)))[:3]
	for i := range products {
		products[i].Reviews = nil
	}
	if err := mem.ReplaceCatalog(ctx, products); err != nil {
		t.Fatal(err)
	}

	svc := catalog.NewService(mem, catalog.WithRand(func(int) int {
		t.Fatal("random offset drawn for a small catalogue")
		return 0
	}))
	recs, err := svc.Recommendations(ctx, products[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("%d recommendations, want 2", len(recs))
	}
	for _, r := range recs {
		if r.ID == products[0].ID {
			t.Fatal("recommended the product itself")
		}
	}
}

func TestFacets(t *testing.T) {
	mem, _ := seeded(t)
	svc := catalog.NewService(mem)

	f, err := svc.Facets(context.Background(), filter.Criteria{Gender: "Men"})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Genders) != 1 || f.Genders[0] != (models.Facet{Name: "Men", Count: 6}) {
		t.Fatalf("genders = %+v", f.Genders)
	}
	if f.Categories[0] != (models.Facet{Name: "Men's Shoes", Count: 5}) {
		t.Fatalf("categories = %+v", f.Categories)
	}
	if *f.PriceRange.Min != 65 || *f.PriceRange.Max != 130 {
		t.Fatalf("price range = %v..%v", *f.PriceRange.Min, *f.PriceRange.Max)
	}
}
