package order

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type memRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order
	// beforeUpdate runs inside UpdateStatus to simulate a concurrent writer.
	beforeUpdate func(o *Order)
}

func newMemRepo() *memRepo { return &memRepo{orders: map[uuid.UUID]*Order{}} }

func (m *memRepo) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orders {
		if o.CheckoutSessionID != nil && existing.CheckoutSessionID != nil && *existing.CheckoutSessionID == *o.CheckoutSessionID {
			return ErrDuplicateCheckout
		}
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) GetByCheckoutSession(_ context.Context, sessionID uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.CheckoutSessionID != nil && *o.CheckoutSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*Order, error) {
	return m.filter(func(o *Order) bool { return o.UserID == userID }), nil
}

func (m *memRepo) List(_ context.Context, f ListFilter) ([]*Order, error) {
	return m.filter(func(o *Order) bool { return f.Status == "" || o.Status == f.Status }), nil
}

func (m *memRepo) filter(keep func(*Order) bool) []*Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Order{}
	for _, o := range m.orders {
		if keep(o) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status, tracking *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(o)
	}
	if o.Status != from {
		return ErrStatusChanged
	}
	o.Status = to
	if tracking != nil {
		o.TrackingCode = *tracking
	}
	return nil
}

type notification struct {
	userID         uuid.UUID
	title, message string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, _, title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification{userID: userID, title: title, message: message})
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, msg interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, msg.(Event))
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
