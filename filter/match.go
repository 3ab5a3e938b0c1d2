package filter

import "strings"

// Row is anything Match can evaluate a predicate against.
type Row interface {
	// Value returns the field value, or nil when the field is absent.
	Value(f Field) any
	Related(r Relation) []Row
}

// Match reports whether row satisfies p, with the same semantics as the SQL
// rendering of p.
func Match(p Predicate, row Row) bool {
	switch n := p.(type) {
	case nil:
		return true
	case And:
		for _, c := range n {
			if !Match(c, row) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range n {
			if Match(c, row) {
				return true
			}
		}
		return false
	case Not:
		return !Match(n.Predicate, row)
	case Contains:
		s, ok := row.Value(n.Field).(string)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(n.Value))
	case Equals:
		v := row.Value(n.Field)
		if n.Value == nil || v == nil {
			return n.Value == nil && v == nil
		}
		return v == n.Value
	case Gte:
		v, ok := number(row.Value(n.Field))
		return ok && v >= n.Value
	case Lte:
		v, ok := number(row.Value(n.Field))
		return ok && v <= n.Value
	case Some:
		for _, r := range row.Related(n.Relation) {
			if Match(n.Where, r) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
