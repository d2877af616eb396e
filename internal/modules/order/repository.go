package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for orders.
type Repository interface {
	// Create fails with ErrDuplicateCheckout when the checkout session already has an order.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByCheckoutSession(ctx context.Context, sessionID uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	List(ctx context.Context, f ListFilter) ([]*Order, error)

	// UpdateStatus moves the order from → to only if it is still in from.
	// A nil trackingCode leaves the stored code untouched. It returns
	// ErrStatusChanged when the row exists but no longer has status from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, trackingCode *string) error
}
