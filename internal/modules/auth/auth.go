package auth

import (
	"context"
	"errors"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (*Token, error)
	Verify(token string) (session.Session, error)
}

// Token is the login response.
type Token struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	Role        session.Role `json:"role"`
}
