package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*Product
	media    map[uuid.UUID][]*Media
	links    map[uuid.UUID]uuid.UUID
}

func newMemRepo() *memRepo {
	return &memRepo{
		products: map[uuid.UUID]*Product{},
		media:    map[uuid.UUID][]*Media{},
		links:    map[uuid.UUID]uuid.UUID{},
	}
}

func (m *memRepo) Create(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	if p.SupplierID != nil {
		m.links[p.ID] = *p.SupplierID
	}
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, f Filter) ([]*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Product{}
	for _, p := range m.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *f.SupplierID) {
			continue
		}
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepo) Update(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) mutate(id uuid.UUID, fn func(*Product)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	fn(p)
	return nil
}

func (m *memRepo) UpdateStock(_ context.Context, id uuid.UUID, qty int) error {
	return m.mutate(id, func(p *Product) { p.StockQuantity = qty })
}

func (m *memRepo) UpdatePrice(_ context.Context, id uuid.UUID, cost, selling decimal.Decimal) error {
	return m.mutate(id, func(p *Product) { p.CostPrice, p.SellingPrice = cost, selling })
}

func (m *memRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	return m.mutate(id, func(p *Product) { p.IsActive = active })
}

func (m *memRepo) AddMedia(_ context.Context, md *Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[md.ProductID]
	if !ok {
		return ErrNotFound
	}
	md.SortOrder = len(m.media[md.ProductID])
	m.media[md.ProductID] = append(m.media[md.ProductID], md)
	if p.ImageURL == "" {
		p.ImageURL = md.URL
	}
	return nil
}

func (m *memRepo) ListMedia(_ context.Context, productID uuid.UUID) ([]*Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Media{}, m.media[productID]...), nil
}

func (m *memRepo) Stats(_ context.Context, supplierID *uuid.UUID, low int) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &Stats{}
	for _, p := range m.products {
		if supplierID != nil && (p.SupplierID == nil || *p.SupplierID != *supplierID) {
			continue
		}
		s.ProductCount++
		if p.IsActive {
			s.ActiveCount++
		}
		s.TotalStock += p.StockQuantity
		if p.StockQuantity == 0 {
			s.OutOfStock++
		}
		if p.StockQuantity < low {
			s.LowStockCount++
		}
		s.InventoryValue = s.InventoryValue.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(p.StockQuantity))))
	}
	return s, nil
}
