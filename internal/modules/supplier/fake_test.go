package supplier

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type memRepo struct {
	mu        sync.Mutex
	suppliers map[uuid.UUID]*Supplier
	refreshed int
}

func newMemRepo() *memRepo { return &memRepo{suppliers: map[uuid.UUID]*Supplier{}} }

func (m *memRepo) Create(_ context.Context, s *Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.suppliers {
		if existing.UserID == s.UserID {
			return ErrAlreadyRegistered
		}
	}
	cp := *s
	m.suppliers[s.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.suppliers {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(_ context.Context, status Status) ([]*Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Supplier{}
	for _, s := range m.suppliers {
		if status == "" || s.Status == status {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suppliers[id]
	if !ok {
		return ErrNotFound
	}
	if s.Status != from {
		return ErrStatusChanged
	}
	s.Status = to
	return nil
}

func (m *memRepo) RefreshProductCount(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed++
	return nil
}

type roleRecorder struct {
	roles map[uuid.UUID]session.Role
	err   error
}

func (r *roleRecorder) SetRole(_ context.Context, userID uuid.UUID, role session.Role) error {
	if r.err != nil {
		return r.err
	}
	r.roles[userID] = role
	return nil
}

type notifyRecorder struct {
	titles []string
	err    error
}

func (n *notifyRecorder) Notify(_ context.Context, _ uuid.UUID, _, title, _ string) error {
	if n.err != nil {
		return n.err
	}
	n.titles = append(n.titles, title)
	return nil
}

// fakeCatalog keeps products in memory and implements catalog.Service.
type fakeCatalog struct {
	products map[uuid.UUID]*catalog.Product
}

func (c *fakeCatalog) CreateProduct(_ context.Context, supplierID *uuid.UUID, req catalog.ProductRequest) (*catalog.Product, error) {
	if req.Name == "" {
		return nil, catalog.ErrInvalidInput
	}
	p := &catalog.Product{ID: uuid.New(), SupplierID: supplierID, Name: req.Name, StockQuantity: req.StockQuantity, IsActive: true}
	c.products[p.ID] = p
	return p, nil
}

func (c *fakeCatalog) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func (c *fakeCatalog) ListProducts(_ context.Context, f catalog.Filter) ([]*catalog.Product, error) {
	out := []*catalog.Product{}
	for _, p := range c.products {
		if f.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *f.SupplierID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *fakeCatalog) UpdateProduct(context.Context, uuid.UUID, catalog.ProductRequest) (*catalog.Product, error) {
	return nil, errors.New("not used")
}

func (c *fakeCatalog) UpdateStock(_ context.Context, id uuid.UUID, qty int) error {
	c.products[id].StockQuantity = qty
	return nil
}

func (c *fakeCatalog) UpdatePrice(_ context.Context, id uuid.UUID, cost, selling decimal.Decimal) error {
	c.products[id].CostPrice, c.products[id].SellingPrice = cost, selling
	return nil
}

func (c *fakeCatalog) SetActive(context.Context, uuid.UUID, bool) error { return nil }

func (c *fakeCatalog) AddMedia(_ context.Context, productID uuid.UUID, _ string, _ io.Reader) (*catalog.Media, error) {
	return &catalog.Media{ID: uuid.New(), ProductID: productID}, nil
}

func (c *fakeCatalog) ListMedia(context.Context, uuid.UUID) ([]*catalog.Media, error) {
	return nil, nil
}

func (c *fakeCatalog) Stats(_ context.Context, supplierID *uuid.UUID) (*catalog.Stats, error) {
	st := &catalog.Stats{}
	for _, p := range c.products {
		if supplierID != nil && p.SupplierID != nil && *p.SupplierID == *supplierID {
			st.ProductCount++
			st.TotalStock += p.StockQuantity
		}
	}
	return st, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
