package user

import (
	"context"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/google/uuid"
)

// Service defines the interface for profile and address business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error)
	SetRole(ctx context.Context, id uuid.UUID, role session.Role) error

	AddAddress(ctx context.Context, userID uuid.UUID, req AddressRequest) (*Address, error)
	GetAddress(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
	SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) error
}
