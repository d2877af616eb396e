package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidInput    = errors.New("invalid input")
)

// Category is the closed set of storefront departments.
type Category string

const (
	CategorySkincare Category = "skincare"
	CategoryMakeup   Category = "makeup"
	CategoryBaby     Category = "baby"
	CategoryLife     Category = "life"
)

// Categories lists every department in display order.
func Categories() []Category {
	return []Category{CategorySkincare, CategoryMakeup, CategoryBaby, CategoryLife}
}

// ParseCategory accepts any casing, so "/Skincare" and "skincare" resolve alike.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case CategorySkincare, CategoryMakeup, CategoryBaby, CategoryLife:
		return true
	}
	return false
}

func (c Category) DisplayName() string {
	switch c {
	case CategorySkincare:
		return "Skincare"
	case CategoryMakeup:
		return "Makeup"
	case CategoryBaby:
		return "Baby"
	case CategoryLife:
		return "Life"
	}
	return string(c)
}

// CategoryInfo is the public view of a department.
type CategoryInfo struct {
	Slug Category `json:"slug"`
	Name string   `json:"name"`
}

// Product is a sellable item. SupplierID is nil for house-brand items.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand,omitempty"`
	Category      Category        `json:"category"`
	Description   string          `json:"description,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	ImageURL      string          `json:"image_url,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Media is an extra image or clip attached to a product.
type Media struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	URL       string    `json:"url"`
	MediaType string    `json:"media_type"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	Category   Category
	Brand      string
	Search     string
	ActiveOnly bool
	SupplierID *uuid.UUID
	Limit      int
	Offset     int
}

// Stats summarises stock for the whole catalog or one supplier.
type Stats struct {
	ProductCount   int             `json:"product_count"`
	ActiveCount    int             `json:"active_count"`
	TotalStock     int             `json:"total_stock"`
	LowStockCount  int             `json:"low_stock_count"`
	OutOfStock     int             `json:"out_of_stock_count"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

// ProductRequest is the create/replace payload.
type ProductRequest struct {
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	StockQuantity int             `json:"stock_quantity"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	ImageURL      string          `json:"image_url"`
}
