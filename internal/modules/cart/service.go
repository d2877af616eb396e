package cart

import (
	"context"
	"errors"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/google/uuid"
)

// Service defines cart business logic. Every call acts on the caller's own cart.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID, couponCode string) (*Cart, error)
	Add(ctx context.Context, userID, productID uuid.UUID, qty int) (*Item, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ProductReader is the slice of the catalog the cart needs.
type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type service struct {
	repo     Repository
	products ProductReader
	pricing  Pricing
}

func NewService(repo Repository, products ProductReader, pricing Pricing) Service {
	return &service{repo: repo, products: products, pricing: pricing}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, couponCode string) (*Cart, error) {
	lines, err := s.repo.ListLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Cart{Lines: lines, Quote: s.pricing.Quote(lines, couponCode)}, nil
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, qty int) (*Item, error) {
	if qty < MinQuantity || qty > MaxQuantity {
		return nil, ErrQuantityOutOfRange
	}

	p, err := s.products.GetProduct(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, ErrProductUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductUnavailable
	}
	if p.StockQuantity == 0 {
		return nil, ErrOutOfStock
	}

	item := &Item{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: qty}
	if err := s.repo.Add(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) error {
	if qty < MinQuantity || qty > MaxQuantity {
		return ErrQuantityOutOfRange
	}
	return s.repo.UpdateQuantity(ctx, userID, itemID, qty)
}

func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, itemID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Clear(ctx, userID)
}
