package store

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/filter"
	"storefront/models"
)

// productRow exposes a product to filter.Match.
type productRow struct {
	p *models.Product
}

func (r productRow) Value(f filter.Field) any {
	switch f {
	case filter.FieldID:
		return r.p.ID
	case filter.FieldName:
		return r.p.Name
	case filter.FieldDescription:
		return r.p.Description
	case filter.FieldCategory:
		return r.p.Category
	case filter.FieldPrice:
		return r.p.Price
	case filter.FieldGender:
		return optional(r.p.Gender)
	case filter.FieldSport:
		return optional(r.p.Sport)
	case filter.FieldShoeHeight:
		return optional(r.p.ShoeHeight)
	}
	return nil
}

func (r productRow) Related(rel filter.Relation) []filter.Row {
	var rows []filter.Row
	switch rel {
	case filter.RelationSizes:
		for _, s := range r.p.Sizes {
			rows = append(rows, sizeRow(s))
		}
	case filter.RelationColors:
		for _, c := range r.p.Colors {
			rows = append(rows, colorRow(c))
		}
	}
	return rows
}

type sizeRow models.Size

func (r sizeRow) Value(f filter.Field) any {
	switch f {
	case filter.FieldSize:
		return r.Size
	case filter.FieldInStock:
		return r.InStock
	}
	return nil
}

func (sizeRow) Related(filter.Relation) []filter.Row { return nil }

type colorRow models.Color

func (r colorRow) Value(f filter.Field) any {
	if f == filter.FieldName {
		return r.Name
	}
	return nil
}

func (colorRow) Related(filter.Relation) []filter.Row { return nil }

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// shapeProduct trims the related rows of p to what shape s exposes.
func shapeProduct(p models.Product, s filter.Shape) models.Product {
	out := p
	out.Images = []models.Image{}
	if img, ok := p.PrimaryImage(); ok {
		out.Images = append(out.Images, img)
	}
	out.Details = nil
	out.Reviews = nil
	out.Colors = nil
	out.Sizes = nil

	if s == filter.ShapeListing {
		out.Colors = append([]models.Color{}, p.Colors...)
		out.Sizes = []models.Size{}
		for _, sz := range p.Sizes {
			if sz.InStock {
				out.Sizes = append(out.Sizes, sz)
			}
		}
	}
	return out
}

// sortNewest orders products by creation time descending, then id descending.
func sortNewest(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// window returns the [skip, skip+take) slice of n items, clamped.
func window(n, skip, take int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if skip > n {
		skip = n
	}
	end := skip + take
	if take < 0 || end > n {
		end = n
	}
	return skip, end
}

func facetList(counts map[string]int) []models.Facet {
	out := make([]models.Facet, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.Facet{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// prepareCatalog returns copies of products with identifiers and timestamps
// filled in. The caller's products and their slices are left untouched.
func prepareCatalog(products []models.Product, now time.Time) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		p = cloneProduct(p)
		assignIDs(&p, now)
		out = append(out, p)
	}
	return out
}

func cloneProduct(p models.Product) models.Product {
	p.Images = append([]models.Image{}, p.Images...)
	p.Colors = append([]models.Color(nil), p.Colors...)
	p.Sizes = append([]models.Size(nil), p.Sizes...)
	p.Details = append([]models.Detail(nil), p.Details...)
	p.Reviews = append([]models.Review(nil), p.Reviews...)
	return p
}

// assignIDs fills in missing identifiers and timestamps before an insert.
func assignIDs(p *models.Product, now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	for i := range p.Images {
		if p.Images[i].ID == "" {
			p.Images[i].ID = uuid.NewString()
		}
	}
	for i := range p.Colors {
		if p.Colors[i].ID == "" {
			p.Colors[i].ID = uuid.NewString()
		}
	}
	for i := range p.Sizes {
		if p.Sizes[i].ID == "" {
			p.Sizes[i].ID = uuid.NewString()
		}
	}
	for i := range p.Details {
		if p.Details[i].ID == "" {
			p.Details[i].ID = uuid.NewString()
		}
	}
	for i := range p.Reviews {
		if p.Reviews[i].ID == "" {
			p.Reviews[i].ID = uuid.NewString()
		}
		if p.Reviews[i].CreatedAt.IsZero() {
			p.Reviews[i].CreatedAt = now
		}
	}
}
