package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores cart rows. Every method is scoped to the owning user.
type Repository interface {
	ListLines(ctx context.Context, userID uuid.UUID) ([]*Line, error)
	// Add inserts a row or increments the quantity of the existing row for
	// the same product. It fails with ErrQuantityOutOfRange past MaxQuantity.
	Add(ctx context.Context, item *Item) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}
