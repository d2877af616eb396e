package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for checkout sessions.
type Repository interface {
	Create(ctx context.Context, s *CheckoutSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*CheckoutSession, error)
	// MarkPaid records the order on a pending session. It returns
	// ErrSessionClosed when the session is no longer pending.
	MarkPaid(ctx context.Context, id, orderID uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status SessionStatus) error
}
