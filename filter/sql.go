package filter

import (
	"strconv"
	"strings"
)

// Column names per scope. Products are aliased p in the outer query.
var (
	productColumns = map[Field]string{
		FieldID:          "p.id",
		FieldName:        "p.name",
		FieldDescription: "p.description",
		FieldCategory:    "p.category",
		FieldPrice:       "p.price",
		FieldGender:      "p.gender",
		FieldSport:       "p.sport",
		FieldShoeHeight:  "p.shoe_height",
	}
	relationTables = map[Relation]struct {
		table, alias string
		columns      map[Field]string
	}{
		RelationSizes: {"product_sizes", "s", map[Field]string{
			FieldSize:    "s.size",
			FieldInStock: "s.in_stock",
		}},
		RelationColors: {"product_colors", "c", map[Field]string{
			FieldName: "c.name",
		}},
	}
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQL renders p as a PostgreSQL boolean expression over the products table
// aliased p. Placeholders are numbered from $1 in the order of the returned
// args, so callers can append further parameters after them.
func SQL(p Predicate) (string, []any) {
	w := &sqlWriter{columns: productColumns}
	return w.render(p), w.args
}

type sqlWriter struct {
	args    []any
	columns map[Field]string
}

func (w *sqlWriter) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + itoa(len(w.args))
}

func (w *sqlWriter) render(p Predicate) string {
	switch n := p.(type) {
	case nil:
		return "TRUE"
	case And:
		return w.join(n, " AND ", "TRUE")
	case Or:
		return w.join(n, " OR ", "FALSE")
	case Not:
		return "NOT (" + w.render(n.Predicate) + ")"
	case Contains:
		col, ok := w.columns[n.Field]
		if !ok {
			return "FALSE"
		}
		return col + ` ILIKE '%' || ` + w.arg(likeEscaper.Replace(n.Value)) + ` || '%'`
	case Equals:
		col, ok := w.columns[n.Field]
		if !ok {
			return "FALSE"
		}
		if n.Value == nil {
			return col + " IS NULL"
		}
		return col + " = " + w.arg(n.Value)
	case Gte:
		col, ok := w.columns[n.Field]
		if !ok {
			return "FALSE"
		}
		return col + " >= " + w.arg(n.Value)
	case Lte:
		col, ok := w.columns[n.Field]
		if !ok {
			return "FALSE"
		}
		return col + " <= " + w.arg(n.Value)
	case Some:
		rel, ok := relationTables[n.Relation]
		if !ok {
			return "FALSE"
		}
		outer := w.columns
		w.columns = rel.columns
		inner := w.render(n.Where)
		w.columns = outer
		return "EXISTS (SELECT 1 FROM " + rel.table + " " + rel.alias +
			" WHERE " + rel.alias + ".product_id = p.id AND " + inner + ")"
	default:
		return "FALSE"
	}
}

func (w *sqlWriter) join(nodes []Predicate, sep, empty string) string {
	if len(nodes) == 0 {
		return empty
	}
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, w.render(n))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func itoa(i int) string { return strconv.Itoa(i) }
