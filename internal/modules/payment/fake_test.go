package payment

import (
	"context"
	"io"
	"sync"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/cart"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type memRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*CheckoutSession
}

func newMemRepo() *memRepo { return &memRepo{sessions: map[uuid.UUID]*CheckoutSession{}} }

func (m *memRepo) Create(_ context.Context, s *CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) MarkPaid(_ context.Context, id, orderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status != SessionPending {
		return ErrSessionClosed
	}
	s.Status = SessionPaid
	s.OrderID = &orderID
	return nil
}

func (m *memRepo) SetStatus(_ context.Context, id uuid.UUID, status SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = status
	return nil
}

// fakeCarts prices its lines with the real cart pricing rules.
type fakeCarts struct {
	pricing cart.Pricing
	lines   map[uuid.UUID][]*cart.Line
	cleared []uuid.UUID
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{
		pricing: cart.Pricing{
			Currency:              "KRW",
			FreeShippingThreshold: decimal.NewFromInt(50000),
			ShippingFee:           decimal.NewFromInt(3000),
		},
		lines: map[uuid.UUID][]*cart.Line{},
	}
}

func (c *fakeCarts) Get(_ context.Context, userID uuid.UUID, coupon string) (*cart.Cart, error) {
	lines := c.lines[userID]
	return &cart.Cart{Lines: lines, Quote: c.pricing.Quote(lines, coupon)}, nil
}

func (c *fakeCarts) Clear(_ context.Context, userID uuid.UUID) error {
	c.cleared = append(c.cleared, userID)
	delete(c.lines, userID)
	return nil
}

type fakeAddresses map[uuid.UUID]*user.Address

func (f fakeAddresses) GetAddress(_ context.Context, userID, id uuid.UUID) (*user.Address, error) {
	a, ok := f[id]
	if !ok || a.UserID != userID {
		return nil, user.ErrNotFound
	}
	return a, nil
}

type fakeOrders struct {
	mu      sync.Mutex
	orders  []*order.Order
	creates int
}

func (f *fakeOrders) Create(_ context.Context, o *order.Order) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	for _, existing := range f.orders {
		if *existing.CheckoutSessionID == *o.CheckoutSessionID {
			return nil, order.ErrDuplicateCheckout
		}
	}
	o.ID = uuid.New()
	o.Status = order.StatusProcessing
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeOrders) GetByCheckoutSession(_ context.Context, sessionID uuid.UUID) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if *o.CheckoutSessionID == sessionID {
			return o, nil
		}
	}
	return nil, order.ErrNotFound
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fixture struct {
	svc       Service
	repo      *memRepo
	carts     *fakeCarts
	addresses fakeAddresses
	orders    *fakeOrders
	gateway   SandboxGateway
}

func newFixture() *fixture {
	f := &fixture{
		repo:      newMemRepo(),
		carts:     newFakeCarts(),
		addresses: fakeAddresses{},
		orders:    &fakeOrders{},
		gateway:   NewSandboxGateway("https://checkout.test/"),
	}
	f.svc = NewService(f.repo, f.carts, f.addresses, f.orders, f.gateway,
		URLs{Success: "https://shop.test/payment-success", Cancel: "https://shop.test/cart"}, quietLogger())
	return f
}

func (f *fixture) fillCart(userID uuid.UUID, price int64, qty int) *cart.Line {
	l := &cart.Line{
		ItemID:        uuid.New(),
		ProductID:     uuid.New(),
		Name:          "Snail Mucin Essence",
		UnitPrice:     decimal.NewFromInt(price),
		Quantity:      qty,
		StockQuantity: 50,
		IsActive:      true,
	}
	f.carts.lines[userID] = append(f.carts.lines[userID], l)
	return l
}
