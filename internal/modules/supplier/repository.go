package supplier

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for supplier data storage.
type Repository interface {
	// Create fails with ErrAlreadyRegistered when the user already has a supplier.
	Create(ctx context.Context, s *Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Supplier, error)
	List(ctx context.Context, status Status) ([]*Supplier, error)
	// UpdateStatus moves the supplier from → to only if it is still in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	// RefreshProductCount recomputes product_count from supplier_products.
	RefreshProductCount(ctx context.Context, id uuid.UUID) error
}
