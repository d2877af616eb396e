package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for product data storage.
type Repository interface {
	// Create inserts the product and, when it has a supplier, its supplier_products link.
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f Filter) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, qty int) error
	UpdatePrice(ctx context.Context, id uuid.UUID, cost, selling decimal.Decimal) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// AddMedia inserts the media row and promotes it to the product's
	// primary image when the product has none.
	AddMedia(ctx context.Context, m *Media) error
	ListMedia(ctx context.Context, productID uuid.UUID) ([]*Media, error)

	Stats(ctx context.Context, supplierID *uuid.UUID, lowStockThreshold int) (*Stats, error)
}
