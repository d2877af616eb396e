package bulkupload

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/supplier"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job
}

func newMemRepo() *memRepo { return &memRepo{jobs: map[uuid.UUID]*Job{}} }

func (m *memRepo) Create(_ context.Context, j *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Job{}
	for _, j := range m.jobs {
		if j.UserID == userID {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) Claim(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status != StatusQueued {
		return ErrAlreadyClaimed
	}
	now := time.Now()
	j.Status = StatusProcessing
	j.ClaimedAt = &now
	return nil
}

func (m *memRepo) Finish(_ context.Context, id uuid.UUID, res Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status != StatusQueued && j.Status != StatusProcessing {
		return ErrJobClosed
	}
	j.Status = res.Status
	j.Processed = res.Processed
	j.Failed = res.Failed
	j.Errors = res.Errors
	return nil
}

func (m *memRepo) FailStale(_ context.Context, claimedBefore time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for _, j := range m.jobs {
		if j.Status == StatusProcessing && j.ClaimedAt != nil && j.ClaimedAt.Before(claimedBefore) {
			j.Status = StatusFailed
			j.Errors = []RowError{{Message: interruptedMessage}}
			ids = append(ids, j.ID)
		}
	}
	return ids, nil
}

type fakeSuppliers struct {
	byUser    map[uuid.UUID]*supplier.Supplier
	refreshed []uuid.UUID
}

func (f *fakeSuppliers) GetByUser(_ context.Context, userID uuid.UUID) (*supplier.Supplier, error) {
	s, ok := f.byUser[userID]
	if !ok {
		return nil, supplier.ErrNotFound
	}
	return s, nil
}

func (f *fakeSuppliers) RefreshProductCount(_ context.Context, id uuid.UUID) error {
	f.refreshed = append(f.refreshed, id)
	return nil
}

type fakeProducts struct {
	created []*catalog.Product
	failOn  string
}

func (f *fakeProducts) CreateProduct(_ context.Context, supplierID *uuid.UUID, req catalog.ProductRequest) (*catalog.Product, error) {
	if req.Name == f.failOn {
		return nil, errors.New("insert failed")
	}
	cat, _ := catalog.ParseCategory(req.Category)
	p := &catalog.Product{ID: uuid.New(), SupplierID: supplierID, Name: req.Name, Category: cat,
		StockQuantity: req.StockQuantity, CostPrice: req.CostPrice, SellingPrice: req.SellingPrice}
	f.created = append(f.created, p)
	return p, nil
}

type recordingPublisher struct {
	messages []Message
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, msg interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg.(Message))
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fixture struct {
	repo      *memRepo
	store     *storage.Local
	suppliers *fakeSuppliers
	products  *fakeProducts
	publisher *recordingPublisher
	svc       Service
	proc      *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir(), "http://files.test")
	require.NoError(t, err)
	f := &fixture{
		repo:      newMemRepo(),
		store:     store,
		suppliers: &fakeSuppliers{byUser: map[uuid.UUID]*supplier.Supplier{}},
		products:  &fakeProducts{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewService(f.repo, f.store, f.suppliers, f.publisher, "bulk", quietLogger())
	f.proc = NewProcessor(f.repo, f.store, f.products, f.suppliers, 15*time.Minute, quietLogger())
	return f
}

func (f *fixture) approvedSupplier(userID uuid.UUID) *supplier.Supplier {
	s := &supplier.Supplier{ID: uuid.New(), UserID: userID, Status: supplier.StatusApproved}
	f.suppliers.byUser[userID] = s
	return s
}
