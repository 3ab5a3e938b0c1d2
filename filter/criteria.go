package filter

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"storefront/utils"
)

// Query parameter names, in the order Parse reads them.
const (
	KeyCategory   = "category"
	KeySize       = "size"
	KeyColor      = "color"
	KeyMinPrice   = "minPrice"
	KeyMaxPrice   = "maxPrice"
	KeySearch     = "search"
	KeyGender     = "gender"
	KeySport      = "sport"
	KeyShoeHeight = "shoeHeight"
	KeySkip       = "skip"
	KeyTake       = "take"
)

var Keys = []string{
	KeyCategory, KeySize, KeyColor, KeyMinPrice, KeyMaxPrice, KeySearch,
	KeyGender, KeySport, KeyShoeHeight, KeySkip, KeyTake,
}

var ErrUnknownKey = errors.New("unknown filter key")

// Criteria is the flat set of optional listing filters. Empty strings and
// nil pointers are absent.
type Criteria struct {
	Category   string   `query:"category"`
	Size       string   `query:"size"`
	Color      string   `query:"color"`
	MinPrice   *float64 `query:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice   *float64 `query:"maxPrice" validate:"omitempty,gte=0"`
	Search     string   `query:"search"`
	Gender     string   `query:"gender"`
	Sport      string   `query:"sport"`
	ShoeHeight string   `query:"shoeHeight"`
	Skip       *int     `query:"skip" validate:"omitempty,gte=0"`
	Take       *int     `query:"take" validate:"omitempty,gte=1"`
}

func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Set assigns one parameter from its raw query-string form. An empty value
// clears the field. On a validation failure c is left unchanged and the
// returned error is a *utils.ValidationError.
func (c *Criteria) Set(key, raw string) error {
	raw = strings.TrimSpace(raw)
	next := *c

	switch key {
	case KeyCategory:
		next.Category = raw
	case KeySize:
		next.Size = raw
	case KeyColor:
		next.Color = raw
	case KeySearch:
		next.Search = raw
	case KeyGender:
		next.Gender = raw
	case KeySport:
		next.Sport = raw
	case KeyShoeHeight:
		next.ShoeHeight = raw
	case KeyMinPrice, KeyMaxPrice:
		var v *float64
		if raw != "" {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return fieldError(key, "Must be a number")
			}
			v = &f
		}
		if key == KeyMinPrice {
			next.MinPrice = v
		} else {
			next.MaxPrice = v
		}
	case KeySkip, KeyTake:
		var v *int
		if raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fieldError(key, "Must be an integer")
			}
			v = &n
		}
		if key == KeySkip {
			next.Skip = v
		} else {
			next.Take = v
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	if err := validateKey(next, key); err != nil {
		return err
	}
	*c = next
	return nil
}

// Get returns the query-string form of one parameter, or "" when absent.
func (c Criteria) Get(key string) string {
	return c.Values().Get(key)
}

// Values encodes the present fields. Absent fields are omitted rather than
// sent empty.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	put := func(key, s string) {
		if s != "" {
			v.Set(key, s)
		}
	}
	put(KeyCategory, c.Category)
	put(KeySize, c.Size)
	put(KeyColor, c.Color)
	if c.MinPrice != nil {
		v.Set(KeyMinPrice, strconv.FormatFloat(*c.MinPrice, 'f', -1, 64))
	}
	if c.MaxPrice != nil {
		v.Set(KeyMaxPrice, strconv.FormatFloat(*c.MaxPrice, 'f', -1, 64))
	}
	put(KeySearch, c.Search)
	put(KeyGender, c.Gender)
	put(KeySport, c.Sport)
	put(KeyShoeHeight, c.ShoeHeight)
	if c.Skip != nil {
		v.Set(KeySkip, strconv.Itoa(*c.Skip))
	}
	if c.Take != nil {
		v.Set(KeyTake, strconv.Itoa(*c.Take))
	}
	return v
}

// Parse reads criteria from query parameters. Parameters that are not filter
// keys are ignored. Invalid values are reported together in a
// *utils.ValidationError, and the returned Criteria still holds every field
// that parsed cleanly.
func Parse(values url.Values) (Criteria, error) {
	var c Criteria
	verr := &utils.ValidationError{}

	for _, key := range Keys {
		raw := values.Get(key)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if err := c.Set(key, raw); err != nil {
			var ve *utils.ValidationError
			if !errors.As(err, &ve) {
				return c, err
			}
			verr.Fields = append(verr.Fields, ve.Fields...)
		}
	}

	return c, verr.Err()
}

func validateKey(c Criteria, key string) error {
	err := utils.ValidateStruct(c)
	if err == nil {
		return nil
	}
	var ve *utils.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	out := &utils.ValidationError{}
	for _, f := range ve.Fields {
		if f.Field == key {
			out.Fields = append(out.Fields, f)
		}
	}
	return out.Err()
}

func fieldError(field, message string) error {
	e := &utils.ValidationError{}
	e.Add(field, message)
	return e
}
