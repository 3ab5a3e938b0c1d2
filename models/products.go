package models

import "time"

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	Description   string    `json:"description"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	Style         string    `json:"style"`
	Badge         *string   `json:"badge,omitempty"`
	Gender        *string   `json:"gender,omitempty"`
	Sport         *string   `json:"sport,omitempty"`
	ShoeHeight    *string   `json:"shoeHeight,omitempty"`
	IsHighlyRated bool      `json:"isHighlyRated"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Images  []Image  `json:"images"`
	Colors  []Color  `json:"colors,omitempty"`
	Sizes   []Size   `json:"sizes,omitempty"`
	Details []Detail `json:"details,omitempty"`
	Reviews []Review `json:"reviews,omitempty"`
}

// Image is one product photo. At most one per product is expected to be
// primary; nothing enforces it.
type Image struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
}

type Color struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	HexCode  *string `json:"hexCode,omitempty"`
	ImageURL string  `json:"imageUrl"`
}

// Size is a free-text size label such as "9.5".
type Size struct {
	ID      string `json:"id"`
	Size    string `json:"size"`
	InStock bool   `json:"inStock"`
}

// Detail is one line of the product fact sheet.
type Detail struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Review struct {
	ID        string       `json:"id"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	UserID    string       `json:"-"`
	CreatedAt time.Time    `json:"createdAt"`
	User      ReviewAuthor `json:"user"`
}

type ReviewAuthor struct {
	FullName string `json:"fullName"`
}

// PrimaryImage returns the first image flagged primary.
func (p *Product) PrimaryImage() (Image, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	return Image{}, false
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
