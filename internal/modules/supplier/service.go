package supplier

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Service interface {
	Register(ctx context.Context, userID uuid.UUID, req RegisterRequest) (*Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*Supplier, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*Supplier, error)
	List(ctx context.Context, status Status) ([]*Supplier, error)
	// SetStatus applies an admin decision. Approval also grants the owner the
	// supplier role; if that fails the status change is rolled back.
	SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Supplier, error)

	// Portal operations act on the caller's own approved supplier account.
	MyProducts(ctx context.Context, userID uuid.UUID, f catalog.Filter) ([]*catalog.Product, error)
	MyStats(ctx context.Context, userID uuid.UUID) (*catalog.Stats, error)
	CreateProduct(ctx context.Context, userID uuid.UUID, req catalog.ProductRequest) (*catalog.Product, error)
	UpdateStock(ctx context.Context, userID, productID uuid.UUID, qty int) error
	UpdatePrice(ctx context.Context, userID, productID uuid.UUID, cost, selling decimal.Decimal) error
	AddMedia(ctx context.Context, userID, productID uuid.UUID, fileName string, r io.Reader) (*catalog.Media, error)
	RefreshProductCount(ctx context.Context, id uuid.UUID) error
}

// RoleSetter changes a profile's role.
type RoleSetter interface {
	SetRole(ctx context.Context, userID uuid.UUID, role session.Role) error
}

// Notifier delivers a notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message string) error
}

type service struct {
	repo     Repository
	roles    RoleSetter
	notifier Notifier
	catalog  catalog.Service
	log      logrus.FieldLogger
}

func NewService(repo Repository, roles RoleSetter, notifier Notifier, catalogSvc catalog.Service, log logrus.FieldLogger) Service {
	return &service{
		repo:     repo,
		roles:    roles,
		notifier: notifier,
		catalog:  catalogSvc,
		log:      log.WithField("module", "supplier"),
	}
}

func (s *service) Register(ctx context.Context, userID uuid.UUID, req RegisterRequest) (*Supplier, error) {
	company := strings.TrimSpace(req.CompanyName)
	if company == "" {
		return nil, fmt.Errorf("%w: company_name is required", ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(req.ContactEmail))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: a valid contact_email is required", ErrInvalidInput)
	}

	sup := &Supplier{
		ID:             uuid.New(),
		UserID:         userID,
		CompanyName:    company,
		ContactName:    strings.TrimSpace(req.ContactName),
		ContactEmail:   email,
		Phone:          strings.TrimSpace(req.Phone),
		BusinessNumber: strings.TrimSpace(req.BusinessNumber),
		Status:         StatusPending,
		CommissionRate: DefaultCommissionRate,
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"supplier_id": sup.ID, "user_id": userID}).Info("supplier application received")
	return sup, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByUser(ctx context.Context, userID uuid.UUID) (*Supplier, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) List(ctx context.Context, status Status) ([]*Supplier, error) {
	if status != "" {
		if _, err := ParseStatus(string(status)); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, status)
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Supplier, error) {
	if _, err := ParseStatus(string(to)); err != nil {
		return nil, err
	}
	sup, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := sup.Status
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, err
	}

	if to == StatusApproved {
		if err := s.roles.SetRole(ctx, sup.UserID, session.RoleSupplier); err != nil {
			if rbErr := s.repo.UpdateStatus(ctx, id, to, from); rbErr != nil {
				s.log.WithError(rbErr).WithField("supplier_id", id).Error("supplier status rollback failed")
			}
			return nil, fmt.Errorf("grant supplier role: %w", err)
		}
	}

	sup.Status = to
	s.log.WithFields(logrus.Fields{"supplier_id": id, "from": from, "to": to}).Info("supplier status changed")

	title, message := statusMessage(sup)
	if err := s.notifier.Notify(ctx, sup.UserID, "supplier_status", title, message); err != nil {
		s.log.WithError(err).WithField("supplier_id", id).Warn("supplier notification failed")
	}
	return sup, nil
}

func statusMessage(sup *Supplier) (string, string) {
	switch sup.Status {
	case StatusApproved:
		return "Supplier account approved", fmt.Sprintf("%s can now list products on the storefront.", sup.CompanyName)
	case StatusRejected:
		return "Supplier application rejected", fmt.Sprintf("The application for %s was not approved.", sup.CompanyName)
	case StatusSuspended:
		return "Supplier account suspended", fmt.Sprintf("%s has been suspended. Contact support for details.", sup.CompanyName)
	case StatusPending:
		return "Supplier application received", fmt.Sprintf("The application for %s is under review.", sup.CompanyName)
	}
	return "Supplier account updated", string(sup.Status)
}

// approved returns the caller's supplier account if it may sell.
func (s *service) approved(ctx context.Context, userID uuid.UUID) (*Supplier, error) {
	sup, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sup.Status != StatusApproved {
		return nil, ErrNotApproved
	}
	return sup, nil
}

// owned checks that productID belongs to the caller's approved account.
func (s *service) owned(ctx context.Context, userID, productID uuid.UUID) error {
	sup, err := s.approved(ctx, userID)
	if err != nil {
		return err
	}
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.SupplierID == nil || *p.SupplierID != sup.ID {
		return ErrNotOwner
	}
	return nil
}

func (s *service) MyProducts(ctx context.Context, userID uuid.UUID, f catalog.Filter) ([]*catalog.Product, error) {
	sup, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	f.SupplierID = &sup.ID
	f.ActiveOnly = false
	return s.catalog.ListProducts(ctx, f)
}

func (s *service) MyStats(ctx context.Context, userID uuid.UUID) (*catalog.Stats, error) {
	sup, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.catalog.Stats(ctx, &sup.ID)
}

func (s *service) CreateProduct(ctx context.Context, userID uuid.UUID, req catalog.ProductRequest) (*catalog.Product, error) {
	sup, err := s.approved(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.catalog.CreateProduct(ctx, &sup.ID, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RefreshProductCount(ctx, sup.ID); err != nil {
		s.log.WithError(err).WithField("supplier_id", sup.ID).Warn("product count refresh failed")
	}
	return p, nil
}

func (s *service) UpdateStock(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	if err := s.owned(ctx, userID, productID); err != nil {
		return err
	}
	return s.catalog.UpdateStock(ctx, productID, qty)
}

func (s *service) UpdatePrice(ctx context.Context, userID, productID uuid.UUID, cost, selling decimal.Decimal) error {
	if err := s.owned(ctx, userID, productID); err != nil {
		return err
	}
	return s.catalog.UpdatePrice(ctx, productID, cost, selling)
}

func (s *service) AddMedia(ctx context.Context, userID, productID uuid.UUID, fileName string, r io.Reader) (*catalog.Media, error) {
	if err := s.owned(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.catalog.AddMedia(ctx, productID, fileName, r)
}

func (s *service) RefreshProductCount(ctx context.Context, id uuid.UUID) error {
	return s.repo.RefreshProductCount(ctx, id)
}
