package filter

// DefaultTake is the page size used when the criteria carry none.
const DefaultTake = 20

// Order selects the sort of a listing.
type Order int

const (
	// OrderNewest sorts by creation time descending, then id descending.
	OrderNewest Order = iota
)

// Shape selects which related rows are loaded with each product.
type Shape int

const (
	// ShapeListing loads the primary image, every colour and in-stock sizes.
	ShapeListing Shape = iota
	// ShapeThumbnail loads the primary image only.
	ShapeThumbnail
)

// Query is a compiled listing request.
type Query struct {
	Where Predicate
	Skip  int
	Take  int
	Order Order
	Shape Shape
}

// Compile builds the listing query for c. It reads nothing but c, and emits
// nodes in a fixed order, so equal criteria always give equal queries.
func Compile(c Criteria) Query {
	where := And{}

	if c.Category != "" {
		where = append(where, Contains{Field: FieldCategory, Value: c.Category})
	}
	if c.Gender != "" {
		where = append(where, Equals{Field: FieldGender, Value: c.Gender})
	}
	if c.Sport != "" {
		where = append(where, Equals{Field: FieldSport, Value: c.Sport})
	}
	if c.ShoeHeight != "" {
		where = append(where, Equals{Field: FieldShoeHeight, Value: c.ShoeHeight})
	}
	if c.Search != "" {
		where = append(where, Or{
			Contains{Field: FieldName, Value: c.Search},
			Contains{Field: FieldDescription, Value: c.Search},
		})
	}
	if c.MinPrice != nil {
		where = append(where, Gte{Field: FieldPrice, Value: *c.MinPrice})
	}
	if c.MaxPrice != nil {
		where = append(where, Lte{Field: FieldPrice, Value: *c.MaxPrice})
	}
	if c.Size != "" {
		where = append(where, Some{Relation: RelationSizes, Where: And{
			Equals{Field: FieldSize, Value: c.Size},
			Equals{Field: FieldInStock, Value: true},
		}})
	}
	if c.Color != "" {
		where = append(where, Some{Relation: RelationColors, Where: Contains{Field: FieldName, Value: c.Color}})
	}

	q := Query{Where: where, Take: DefaultTake, Order: OrderNewest, Shape: ShapeListing}
	if c.Skip != nil && *c.Skip > 0 {
		q.Skip = *c.Skip
	}
	if c.Take != nil && *c.Take > 0 {
		q.Take = *c.Take
	}
	return q
}

// Excluding returns a predicate matching every product except id.
func Excluding(id string) Predicate {
	return Not{Predicate: Equals{Field: FieldID, Value: id}}
}
