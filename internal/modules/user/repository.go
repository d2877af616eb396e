package user

import (
	"context"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/google/uuid"
)

// Repository defines profile and saved-address storage.
type Repository interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfileByEmail(ctx context.Context, email string) (*Profile, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, p *Profile) error
	UpdateRole(ctx context.Context, id uuid.UUID, role session.Role) error

	CreateAddress(ctx context.Context, a *Address) error
	GetAddress(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
	// SetDefaultAddress clears the flag on the user's other addresses in the same transaction.
	SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) error
}
