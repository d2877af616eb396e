package supplier

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("supplier not found")
	ErrAlreadyRegistered = errors.New("user already has a supplier account")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidStatus     = errors.New("invalid supplier status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusChanged     = errors.New("supplier status was changed concurrently")
	ErrNotApproved       = errors.New("supplier account is not approved")
	ErrNotOwner          = errors.New("product does not belong to this supplier")
)

// DefaultCommissionRate is the percentage taken on new suppliers' sales.
var DefaultCommissionRate = decimal.NewFromInt(10)

// Status is the approval state of a supplier account.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusSuspended Status = "suspended"
	StatusRejected  Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusApproved, StatusSuspended, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// validTransitions defines the allowed status state machine. Suspended and
// rejected accounts cannot be reinstated.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusSuspended},
	StatusSuspended: {},
	StatusRejected:  {},
}

func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Supplier is a third-party brand selling through the storefront.
// TotalRevenue, ProductCount and Rating are denormalised aggregates.
type Supplier struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	CompanyName    string          `json:"company_name"`
	ContactName    string          `json:"contact_name,omitempty"`
	ContactEmail   string          `json:"contact_email"`
	Phone          string          `json:"phone,omitempty"`
	BusinessNumber string          `json:"business_number,omitempty"`
	Status         Status          `json:"status"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	ProductCount   int             `json:"product_count"`
	Rating         decimal.Decimal `json:"rating"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RegisterRequest is the supplier application form.
type RegisterRequest struct {
	CompanyName    string `json:"company_name"`
	ContactName    string `json:"contact_name"`
	ContactEmail   string `json:"contact_email"`
	Phone          string `json:"phone"`
	BusinessNumber string `json:"business_number"`
}

// StatusRequest is the admin payload for approving, rejecting or suspending.
type StatusRequest struct {
	Status string `json:"status"`
}
