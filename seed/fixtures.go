package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"storefront/models"
)

type fixture struct {
	name       string
	category   string
	price      float64
	image      string
	badge      string
	gender     string
	sport      string
	shoeHeight string
}

var fixtures = []fixture{
	{"Nike Air Force 1 Mid '07", "Men's Shoes", 110, "/products/product1.png", "Just In", "Men", "Lifestyle", "Mid Top"},
	{"Nike Court Vision Low Next Nature", "Women's Shoes", 75, "/products/product2.png", "Sustainable Materials", "Women", "Lifestyle", "Low Top"},
	{"Nike Air Force 1 PLT.AF.ORM", "Women's Shoes", 105, "/products/product3.png", "Extra 20% off", "Women", "Lifestyle", "Low Top"},
	{"Nike Dunk Low Retro", "Men's Shoes", 115, "/products/product4.png", "Just In", "Men", "Basketball", "Low Top"},
	{"Nike Air Max SYSTM", "Kids' Shoes", 85, "/products/product5.png", "Best Seller", "Kids", "Lifestyle", "Low Top"},
	{"Nike Air Force 1 PLT.AF.ORM LV8", "Women's Shoes", 120, "/products/product6.png", "Sustainable Materials", "Women", "Lifestyle", "Low Top"},
	{"Nike Dunk Low Retro SE", "Men's Shoes", 125, "/products/product7.png", "Extra 20% off", "Men", "Basketball", "Low Top"},
	{"Nike Air Max 90 SE", "Men's Shoes", 130, "/products/product8.png", "Just In", "Men", "Running", "Low Top"},
	{"Nike Legend Essential 3 Next Nature", "Men's Training Shoes", 65, "/products/product9.png", "Best Seller", "Men", "Training", "Low Top"},
	{"Nike SB Zoom Janoski OG+", "Unisex Shoes", 95, "/products/product10.png", "Sustainable Materials", "Unisex", "Skateboarding", "Low Top"},
	{"Jordan Series ES", "Men's Shoes", 85, "/products/product11.png", "Extra 20% off", "Men", "Jordan", "Low Top"},
	{"Nike Blazer Low '77 Jumbo", "Women's Shoes", 100, "/products/product12.png", "Just In", "Women", "Lifestyle", "Low Top"},
	{"Nike Air Max 90 Future", "Women's Shoes", 140, "/products/product13.jpg", "New Arrival", "Women", "Running", "Low Top"},
}

// variantHexes are the colourways of the featured product, in display order.
var variantHexes = []string{"#ffffff", "#000000", "#DC143C", "#4169E1", "#01796F", "#7D7F7D"}

// featured is the index of the fixture carrying a full gallery and variants.
const featured = 12

var sizeLabels = []string{"7", "7.5", "8", "8.5", "9", "9.5", "10", "10.5", "11", "11.5", "12"}

const soldOutSize = "11.5"

// Products builds the fixture catalogue. Reviews are attributed to
// reviewerID, and creation times increase from base in fixture order so the
// last fixture is the newest.
func Products(reviewerID string, base time.Time, rng *rand.Rand) []models.Product {
	products := make([]models.Product, 0, len(fixtures))
	for i, f := range fixtures {
		created := base.Add(time.Duration(i) * time.Second)
		p := models.Product{
			ID:            uuid.NewString(),
			Name:          f.name,
			Category:      f.category,
			Price:         f.price,
			Description:   fmt.Sprintf("Experience the perfect blend of style and comfort with the %s. Designed for everyday wear, it features premium materials and iconic Nike cushioning.", f.name),
			Rating:        4.5 + rng.Float64()*0.5,
			ReviewCount:   rng.Intn(100) + 10,
			Style:         fmt.Sprintf("NK-%04d", rng.Intn(10000)),
			Badge:         models.StringPtr(f.badge),
			Gender:        models.StringPtr(f.gender),
			Sport:         models.StringPtr(f.sport),
			ShoeHeight:    models.StringPtr(f.shoeHeight),
			IsHighlyRated: rng.Intn(2) == 1,
			CreatedAt:     created,
			UpdatedAt:     created,
			Details: []models.Detail{
				{Key: "Feature", Value: "Premium materials"},
				{Key: "Feature", Value: "Durable construction"},
				{Key: "Comfort", Value: "Cushioned midsole"},
			},
			Reviews: []models.Review{
				{Rating: 5, Comment: "Absolutely love these! Great fit and look amazing.", UserID: reviewerID, CreatedAt: created},
				{Rating: 4, Comment: "Good shoes, but run slightly small.", UserID: reviewerID, CreatedAt: created},
			},
		}

		for _, label := range sizeLabels {
			p.Sizes = append(p.Sizes, models.Size{Size: label, InStock: label != soldOutSize})
		}

		if i == featured {
			p.Images = append(p.Images, models.Image{URL: f.image, IsPrimary: true})
			for n := 14; n <= 20; n++ {
				p.Images = append(p.Images, models.Image{URL: fmt.Sprintf("/products/product%d.png", n)})
			}
			for v, hex := range variantHexes {
				p.Colors = append(p.Colors, models.Color{
					Name:     fmt.Sprintf("Variant %d", v+1),
					HexCode:  models.StringPtr(hex),
					ImageURL: fmt.Sprintf("/products/product%d.png", 21+v),
				})
			}
		} else {
			p.Images = []models.Image{{URL: f.image, IsPrimary: true}}
			p.Colors = []models.Color{{Name: "Standard", HexCode: models.StringPtr("#000000"), ImageURL: f.image}}
		}

		products = append(products, p)
	}
	return products
}
