// Package filter turns catalogue filter criteria into an explicit predicate
// tree that can be rendered as SQL or evaluated against in-memory rows.
package filter

// Field names a scalar attribute of a product or of a related row.
type Field string

const (
	FieldID          Field = "id"
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
	FieldPrice       Field = "price"
	FieldGender      Field = "gender"
	FieldSport       Field = "sport"
	FieldShoeHeight  Field = "shoeHeight"
	FieldSize        Field = "size"
	FieldInStock     Field = "inStock"
)

// Relation names a one-to-many collection owned by a product.
type Relation string

const (
	RelationSizes  Relation = "sizes"
	RelationColors Relation = "colors"
)

// Predicate is a node of the condition tree. The concrete node types below
// are the only implementations.
type Predicate interface {
	predicate()
}

// And matches when every child matches. An empty And matches everything.
type And []Predicate

// Or matches when any child matches. An empty Or matches nothing.
type Or []Predicate

type Not struct {
	Predicate Predicate
}

// Contains is a case-insensitive substring match on a string field.
type Contains struct {
	Field Field
	Value string
}

// Equals is an exact match. A nil Value matches an absent field.
type Equals struct {
	Field Field
	Value any
}

// Gte and Lte are inclusive numeric bounds.
type Gte struct {
	Field Field
	Value float64
}

type Lte struct {
	Field Field
	Value float64
}

// Some matches when at least one row of Relation satisfies Where.
type Some struct {
	Relation Relation
	Where    Predicate
}

func (And) predicate()      {}
func (Or) predicate()       {}
func (Not) predicate()      {}
func (Contains) predicate() {}
func (Equals) predicate()   {}
func (Gte) predicate()      {}
func (Lte) predicate()      {}
func (Some) predicate()     {}
