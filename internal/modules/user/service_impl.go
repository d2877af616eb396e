package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type service struct {
	repo Repository
	log  logrus.FieldLogger
}

// NewService creates a new profile service.
func NewService(repo Repository, log logrus.FieldLogger) Service {
	return &service{repo: repo, log: log.WithField("module", "user")}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Profile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         session.RoleCustomer,
	}
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithField("user_id", p.ID).Info("profile registered")
	return p, nil
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetProfileByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	p, err := s.repo.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.FullName = strings.TrimSpace(req.FullName)
	p.Phone = strings.TrimSpace(req.Phone)
	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) SetRole(ctx context.Context, id uuid.UUID, role session.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return fmt.Errorf("set role for %s: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("role changed")
	return nil
}

func (s *service) AddAddress(ctx context.Context, userID uuid.UUID, req AddressRequest) (*Address, error) {
	if strings.TrimSpace(req.RecipientName) == "" || strings.TrimSpace(req.Line1) == "" || strings.TrimSpace(req.City) == "" {
		return nil, fmt.Errorf("%w: recipient_name, line1 and city are required", ErrInvalidInput)
	}
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = "KR"
	}

	existing, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &Address{
		ID:            uuid.New(),
		UserID:        userID,
		Label:         strings.TrimSpace(req.Label),
		RecipientName: strings.TrimSpace(req.RecipientName),
		Phone:         strings.TrimSpace(req.Phone),
		Line1:         strings.TrimSpace(req.Line1),
		Line2:         strings.TrimSpace(req.Line2),
		City:          strings.TrimSpace(req.City),
		PostalCode:    strings.TrimSpace(req.PostalCode),
		Country:       country,
	}
	if err := s.repo.CreateAddress(ctx, a); err != nil {
		return nil, err
	}

	// The first address, or one explicitly flagged, becomes the default.
	if len(existing) == 0 || req.IsDefault {
		if err := s.repo.SetDefaultAddress(ctx, userID, a.ID); err != nil {
			return nil, err
		}
		a.IsDefault = true
	}
	return a, nil
}

func (s *service) GetAddress(ctx context.Context, userID, id uuid.UUID) (*Address, error) {
	return s.repo.GetAddress(ctx, userID, id)
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*Address, error) {
	return s.repo.ListAddresses(ctx, userID)
}

func (s *service) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteAddress(ctx, userID, id); err != nil {
		return fmt.Errorf("address %s: %w", id, err)
	}
	return nil
}

func (s *service) SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.SetDefaultAddress(ctx, userID, id); err != nil {
		return fmt.Errorf("address %s: %w", id, err)
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fmt.Errorf("%w: password must contain a letter and a digit", ErrInvalidInput)
	}
	return nil
}
