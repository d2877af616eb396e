package catalog

import (
	"github.com/shopspring/decimal"
)

// StaticProduct is a curated item compiled into the binary. It backs the
// alternate browsing path and never touches stock or the cart tables.
type StaticProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

var staticCatalog = []StaticProduct{
	{
		ID: "s-1", Name: "Advanced Snail 96 Mucin Power Essence", Brand: "COSRX",
		Category: CategorySkincare, Price: decimal.NewFromInt(25000),
		Description: "Lightweight essence with 96% snail secretion filtrate.",
		ImageURL:    "/static/products/cosrx-snail-essence.jpg",
	},
	{
		ID: "s-2", Name: "Relief Sun: Rice + Probiotics SPF50+", Brand: "Beauty of Joseon",
		Category: CategorySkincare, Price: decimal.NewFromInt(18000),
		Description: "Organic chemical sunscreen with rice extract.",
		ImageURL:    "/static/products/boj-relief-sun.jpg",
	},
	{
		ID: "s-3", Name: "Juicy Lasting Tint", Brand: "rom&nd",
		Category: CategoryMakeup, Price: decimal.NewFromInt(13000),
		Description: "Glossy lip tint with long-lasting color.",
		ImageURL:    "/static/products/romand-juicy-tint.jpg",
	},
	{
		ID: "s-4", Name: "Black Cushion SPF34", Brand: "HERA",
		Category: CategoryMakeup, Price: decimal.NewFromInt(59000),
		Description: "Semi-matte cushion foundation.",
		ImageURL:    "/static/products/hera-black-cushion.jpg",
	},
	{
		ID: "s-5", Name: "Baby Moisture Lotion", Brand: "Goongbe",
		Category: CategoryBaby, Price: decimal.NewFromInt(22000),
		Description: "Gentle daily lotion for sensitive baby skin.",
		ImageURL:    "/static/products/goongbe-lotion.jpg",
	},
	{
		ID: "s-6", Name: "Green Tea Seed Hand Cream", Brand: "innisfree",
		Category: CategoryLife, Price: decimal.NewFromInt(8000),
		Description: "Hydrating hand cream with Jeju green tea.",
		ImageURL:    "/static/products/innisfree-hand-cream.jpg",
	},
}

// StaticProducts returns the compiled-in catalog, optionally limited to one category.
func StaticProducts(category Category) []StaticProduct {
	out := make([]StaticProduct, 0, len(staticCatalog))
	for _, p := range staticCatalog {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// StaticProductByID looks up a compiled-in product.
func StaticProductByID(id string) (StaticProduct, bool) {
	for _, p := range staticCatalog {
		if p.ID == id {
			return p, true
		}
	}
	return StaticProduct{}, false
}
