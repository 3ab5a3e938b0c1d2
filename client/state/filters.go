package state

import (
	"errors"
	"fmt"
	"net/url"
	"sync"

	"storefront/filter"
)

var ErrUnknownFilter = errors.New("unknown filter")

// PriceRange is one of the sidebar's preset bands. A nil Max is open ended.
type PriceRange struct {
	Label string
	Min   float64
	Max   *float64
}

func bound(v float64) *float64 { return &v }

var PriceRanges = []PriceRange{
	{Label: "$25 - $50", Min: 25, Max: bound(50)},
	{Label: "$50 - $100", Min: 50, Max: bound(100)},
	{Label: "$100 - $150", Min: 100, Max: bound(150)},
	{Label: "Over $150", Min: 150},
}

// Quick filter labels with a dedicated field. Any other label sets category.
const (
	QuickLowTop        = "Low Top"
	QuickHighTop       = "High Top"
	QuickSkateboarding = "Skateboarding"
)

// Filters is the listing filter state behind the URL. The query string is
// always rebuilt from the criteria, so the two never drift.
type Filters struct {
	mu       sync.RWMutex
	criteria filter.Criteria
	extra    url.Values
}

// NewFilters seeds from rawQuery. Filter values that do not parse are
// dropped; parameters that are not filters are kept as they are.
func NewFilters(rawQuery string) *Filters {
	f := &Filters{extra: url.Values{}}
	values, _ := url.ParseQuery(rawQuery)
	for key, vs := range values {
		if !filter.IsKey(key) {
			f.extra[key] = vs
			continue
		}
		if len(vs) > 0 {
			_ = f.criteria.Set(key, vs[0])
		}
	}
	return f
}

// Set assigns one filter from its string form. An empty value clears it.
func (f *Filters) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.criteria.Set(key, value)
	if errors.Is(err, filter.ErrUnknownKey) {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, key)
	}
	return err
}

func (f *Filters) SetPriceRange(min, max *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.criteria
	next.MinPrice = copyFloat(min)
	next.MaxPrice = copyFloat(max)
	for _, key := range []string{filter.KeyMinPrice, filter.KeyMaxPrice} {
		if err := next.Set(key, next.Get(key)); err != nil {
			return err
		}
	}
	f.criteria = next
	return nil
}

// ApplyPriceRange selects one of PriceRanges.
func (f *Filters) ApplyPriceRange(r PriceRange) error {
	return f.SetPriceRange(bound(r.Min), r.Max)
}

// ApplyQuickFilter routes a sidebar shortcut to its field. Height and sport
// labels have their own fields; the rest are categories.
func (f *Filters) ApplyQuickFilter(label string) error {
	switch label {
	case QuickLowTop, QuickHighTop:
		return f.Set(filter.KeyShoeHeight, label)
	case QuickSkateboarding:
		return f.Set(filter.KeySport, label)
	default:
		return f.Set(filter.KeyCategory, label)
	}
}

// Reset clears every filter but keeps the unrelated parameters.
func (f *Filters) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.criteria = filter.Criteria{}
}

// Criteria returns a copy of the current filters. Changing it does not
// affect f.
func (f *Filters) Criteria() filter.Criteria {
	f.mu.RLock()
	defer f.mu.RUnlock()

	c := f.criteria
	c.MinPrice = copyFloat(c.MinPrice)
	c.MaxPrice = copyFloat(c.MaxPrice)
	c.Skip = copyInt(c.Skip)
	c.Take = copyInt(c.Take)
	return c
}

// Query encodes the unrelated parameters plus every present filter.
func (f *Filters) Query() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v := url.Values{}
	for key, vs := range f.extra {
		v[key] = append([]string(nil), vs...)
	}
	for key, vs := range f.criteria.Values() {
		v[key] = vs
	}
	return v.Encode()
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
