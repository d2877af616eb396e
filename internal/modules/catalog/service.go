package catalog

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, supplierID *uuid.UUID, req ProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, f Filter) ([]*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, qty int) error
	UpdatePrice(ctx context.Context, id uuid.UUID, cost, selling decimal.Decimal) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	AddMedia(ctx context.Context, productID uuid.UUID, fileName string, r io.Reader) (*Media, error)
	ListMedia(ctx context.Context, productID uuid.UUID) ([]*Media, error)
	Stats(ctx context.Context, supplierID *uuid.UUID) (*Stats, error)
}

type service struct {
	repo              Repository
	store             storage.Store
	lowStockThreshold int
	now               func() time.Time
}

// NewService creates a catalog service. Product images are written to store.
func NewService(repo Repository, store storage.Store, lowStockThreshold int) Service {
	return &service{repo: repo, store: store, lowStockThreshold: lowStockThreshold, now: time.Now}
}

func (s *service) CreateProduct(ctx context.Context, supplierID *uuid.UUID, req ProductRequest) (*Product, error) {
	category, err := validate(req)
	if err != nil {
		return nil, err
	}
	p := &Product{
		ID:            uuid.New(),
		SupplierID:    supplierID,
		Name:          strings.TrimSpace(req.Name),
		Brand:         strings.TrimSpace(req.Brand),
		Category:      category,
		Description:   req.Description,
		StockQuantity: req.StockQuantity,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
		ImageURL:      req.ImageURL,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, f Filter) ([]*Product, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must be non-negative", ErrInvalidInput)
	}
	return s.repo.List(ctx, f)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*Product, error) {
	category, err := validate(req)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Brand = strings.TrimSpace(req.Brand)
	p.Category = category
	p.Description = req.Description
	p.StockQuantity = req.StockQuantity
	p.CostPrice = req.CostPrice
	p.SellingPrice = req.SellingPrice
	if req.ImageURL != "" {
		p.ImageURL = req.ImageURL
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UpdateStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidInput)
	}
	return s.repo.UpdateStock(ctx, id, qty)
}

func (s *service) UpdatePrice(ctx context.Context, id uuid.UUID, cost, selling decimal.Decimal) error {
	if cost.IsNegative() || selling.IsNegative() {
		return fmt.Errorf("%w: prices cannot be negative", ErrInvalidInput)
	}
	return s.repo.UpdatePrice(ctx, id, cost, selling)
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *service) AddMedia(ctx context.Context, productID uuid.UUID, fileName string, r io.Reader) (*Media, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s-%d-%s", productID, s.now().Unix(), path.Base(fileName))
	_, url, err := s.store.Put(ctx, storage.BucketProductImages, name, r)
	if err != nil {
		return nil, fmt.Errorf("upload product media: %w", err)
	}

	m := &Media{ID: uuid.New(), ProductID: productID, URL: url, MediaType: mediaType(fileName)}
	if err := s.repo.AddMedia(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ListMedia(ctx context.Context, productID uuid.UUID) ([]*Media, error) {
	return s.repo.ListMedia(ctx, productID)
}

func (s *service) Stats(ctx context.Context, supplierID *uuid.UUID) (*Stats, error) {
	return s.repo.Stats(ctx, supplierID, s.lowStockThreshold)
}

func validate(req ProductRequest) (Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	category, err := ParseCategory(req.Category)
	if err != nil {
		return "", err
	}
	if req.StockQuantity < 0 {
		return "", fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidInput)
	}
	if req.CostPrice.IsNegative() || req.SellingPrice.IsNegative() {
		return "", fmt.Errorf("%w: prices cannot be negative", ErrInvalidInput)
	}
	return category, nil
}

func mediaType(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".mp4", ".webm", ".mov":
		return "video"
	}
	return "image"
}
