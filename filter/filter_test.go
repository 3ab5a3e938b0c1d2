package filter

import (
	"errors"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"storefront/utils"
)

type testRow struct {
	fields    map[Field]any
	relations map[Relation][]Row
}

func (r testRow) Value(f Field) any          { return r.fields[f] }
func (r testRow) Related(rel Relation) []Row { return r.relations[rel] }

func sizeRow(label string, inStock bool) Row {
	return testRow{fields: map[Field]any{FieldSize: label, FieldInStock: inStock}}
}

func colorRow(name string) Row    { return testRow{fields: map[Field]any{FieldName: name}} }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func shoe(name string, price float64, sizes ...Row) testRow {
	return testRow{
		fields: map[Field]any{
			FieldID:          name,
			FieldName:        name,
			FieldDescription: "Everyday comfort",
			FieldCategory:    "Men's Shoes",
			FieldPrice:       price,
			FieldGender:      "Men",
		},
		relations: map[Relation][]Row{
			RelationSizes:  sizes,
			RelationColors: {colorRow("Black")},
		},
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	c := Criteria{
		Category: "Shoes", Size: "9", Color: "Black", Search: "air",
		Gender: "Men", Sport: "Running", ShoeHeight: "Low Top",
		MinPrice: floatPtr(50), MaxPrice: floatPtr(150), Skip: intPtr(10), Take: intPtr(5),
	}
	a, b := Compile(c), Compile(c)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Compile not deterministic:\n%#v\n%#v", a, b)
	}
	if n := len(a.Where.(And)); n != 9 {
		t.Fatalf("top-level nodes = %d, want 9", n)
	}
	if a.Skip != 10 || a.Take != 5 {
		t.Fatalf("window = %d/%d, want 10/5", a.Skip, a.Take)
	}
}

func TestCompileDefaults(t *testing.T) {
	q := Compile(Criteria{})
	if q.Skip != 0 || q.Take != DefaultTake {
		t.Fatalf("window = %d/%d, want 0/%d", q.Skip, q.Take, DefaultTake)
	}
	if len(q.Where.(And)) != 0 {
		t.Fatalf("where = %#v, want empty And", q.Where)
	}
	if !Match(q.Where, shoe("any", 10)) {
		t.Fatal("empty criteria should match every product")
	}
	if q.Shape != ShapeListing || q.Order != OrderNewest {
		t.Fatalf("shape/order = %v/%v", q.Shape, q.Order)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		row  testRow
		want bool
	}{
		{"size in stock", Criteria{Size: "9"}, shoe("a", 100, sizeRow("9", true)), true},
		{"size out of stock", Criteria{Size: "9"}, shoe("a", 100, sizeRow("9", false), sizeRow("10", true)), false},
		{"size missing", Criteria{Size: "9"}, shoe("a", 100, sizeRow("9.5", true)), false},
		{"min price inclusive", Criteria{MinPrice: floatPtr(100)}, shoe("a", 100), true},
		{"max price inclusive", Criteria{MaxPrice: floatPtr(100)}, shoe("a", 100), true},
		{"below min", Criteria{MinPrice: floatPtr(100.01)}, shoe("a", 100), false},
		{"min greater than max", Criteria{MinPrice: floatPtr(150), MaxPrice: floatPtr(50)}, shoe("a", 100), false},
		{"search name", Criteria{Search: "AIR"}, shoe("Nike Air Max", 100), true},
		{"search description", Criteria{Search: "comfort"}, shoe("Dunk", 100), true},
		{"search miss", Criteria{Search: "boot"}, shoe("Dunk", 100), false},
		{"category substring", Criteria{Category: "men's"}, shoe("a", 100), true},
		{"gender exact", Criteria{Gender: "Men"}, shoe("a", 100), true},
		{"gender not substring", Criteria{Gender: "Me"}, shoe("a", 100), false},
		{"absent sport", Criteria{Sport: "Running"}, shoe("a", 100), false},
		{"color substring", Criteria{Color: "bla"}, shoe("a", 100), true},
		{"color miss", Criteria{Color: "Red"}, shoe("a", 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(Compile(tt.c).Where, tt.row); got != tt.want {
				t.Fatalf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExcluding(t *testing.T) {
	p := Excluding("a")
	if Match(p, shoe("a", 1)) {
		t.Fatal("Excluding(a) matched a")
	}
	if !Match(p, shoe("b", 1)) {
		t.Fatal("Excluding(a) did not match b")
	}
}

func TestSQL(t *testing.T) {
	q := Compile(Criteria{
		Gender:   "Men",
		Search:   "50%_off",
		MinPrice: floatPtr(25),
		Size:     "9",
	})
	sql, args := SQL(q.Where)

	want := "(p.gender = $1" +
		` AND (p.name ILIKE '%' || $2 || '%' OR p.description ILIKE '%' || $3 || '%')` +
		" AND p.price >= $4" +
		" AND EXISTS (SELECT 1 FROM product_sizes s WHERE s.product_id = p.id AND (s.size = $5 AND s.in_stock = $6)))"
	if sql != want {
		t.Fatalf("SQL =\n%s\nwant\n%s", sql, want)
	}

	wantArgs := []any{"Men", `50\%\_off`, `50\%\_off`, 25.0, "9", true}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestSQLEdgeNodes(t *testing.T) {
	tests := []struct {
		name string
		p    Predicate
		want string
	}{
		{"empty and", And{}, "TRUE"},
		{"empty or", Or{}, "FALSE"},
		{"nil", nil, "TRUE"},
		{"not", Excluding("x"), "NOT (p.id = $1)"},
		{"null", Equals{Field: FieldSport}, "p.sport IS NULL"},
		{"unknown column", Equals{Field: FieldSize, Value: "9"}, "FALSE"},
		{"colors", Some{Relation: RelationColors, Where: Contains{Field: FieldName, Value: "red"}},
			`EXISTS (SELECT 1 FROM product_colors c WHERE c.product_id = p.id AND c.name ILIKE '%' || $1 || '%')`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := SQL(tt.p); got != tt.want {
				t.Fatalf("SQL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	v := url.Values{
		"gender":   {"Men"},
		"minPrice": {"50"},
		"maxPrice": {"abc"},
		"skip":     {"-1"},
		"take":     {"5"},
		"color":    {""},
		"page":     {"2"},
	}
	c, err := Parse(v)

	var ve *utils.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *utils.ValidationError", err)
	}
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	if len(fields) != 2 || !fields["maxPrice"] || !fields["skip"] {
		t.Fatalf("failed fields = %v, want maxPrice and skip", ve.Fields)
	}

	if c.Gender != "Men" || c.MinPrice == nil || *c.MinPrice != 50 || c.Take == nil || *c.Take != 5 {
		t.Fatalf("clean fields lost: %+v", c)
	}
	if c.MaxPrice != nil || c.Skip != nil || c.Color != "" {
		t.Fatalf("invalid fields kept: %+v", c)
	}
}

func TestParseRejectsZeroTake(t *testing.T) {
	_, err := Parse(url.Values{"take": {"0"}})
	if err == nil {
		t.Fatal("take=0 accepted")
	}
}

func TestValuesRoundTrip(t *testing.T) {
	c := Criteria{Gender: "Women", MaxPrice: floatPtr(99.5), Take: intPtr(8)}
	enc := c.Values().Encode()
	if strings.Contains(enc, "category") || strings.Contains(enc, "skip") {
		t.Fatalf("absent fields encoded: %s", enc)
	}

	values, _ := url.ParseQuery(enc)
	got, err := Parse(values)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Fatalf("round trip = %+v, want %+v", got, c)
	}
}

func TestSetUnknownKey(t *testing.T) {
	var c Criteria
	if err := c.Set("brand", "Nike"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("err = %v, want ErrUnknownKey", err)
	}
}

func TestSetClears(t *testing.T) {
	var c Criteria
	if err := c.Set(KeyGender, "Men"); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(KeyGender, ""); err != nil {
		t.Fatal(err)
	}
	if c.Gender != "" || c.Get(KeyGender) != "" {
		t.Fatalf("gender = %q after clear", c.Gender)
	}
}
