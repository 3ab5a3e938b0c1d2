package models

type ProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Take     int       `json:"take"`
}

type Facet struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type PriceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type FacetsResponse struct {
	Categories []Facet    `json:"categories"`
	Genders    []Facet    `json:"genders"`
	Sports     []Facet    `json:"sports"`
	PriceRange PriceRange `json:"priceRange"`
}
