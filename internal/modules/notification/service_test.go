package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/broker"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu    sync.Mutex
	items []*Notification
}

func (m *memRepo) Create(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.items = append(m.items, &cp)
	return nil
}

func (m *memRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Notification{}
	for _, n := range m.items {
		if n.UserID == userID && (!unreadOnly || !n.Read) && len(out) < limit {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *memRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (m *memRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

type stubPublisher struct {
	queues []string
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, queue string, _ interface{}) error {
	p.queues = append(p.queues, queue)
	return p.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNotifyStoresAndQueues(t *testing.T) {
	repo, pub := &memRepo{}, &stubPublisher{}
	svc := NewService(repo, pub, "notifications", quietLogger())
	userID := uuid.New()

	require.NoError(t, svc.Notify(context.Background(), userID, "order_status", "Order dispatched", "On its way"))
	require.Len(t, repo.items, 1)
	assert.Equal(t, "order_status", repo.items[0].Kind)
	assert.Equal(t, []string{"notifications"}, pub.queues)

	n, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNotifySurvivesBrokerFailure(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, &stubPublisher{err: errors.New("connection reset")}, "q", quietLogger())

	require.NoError(t, svc.Notify(context.Background(), uuid.New(), "", "Hi", "Welcome"))
	require.Len(t, repo.items, 1)
	assert.Equal(t, "general", repo.items[0].Kind)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&memRepo{}, broker.Discard{Log: quietLogger()}, "q", quietLogger())

	_, err := svc.Create(context.Background(), CreateRequest{Title: "t", Message: "m"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateRequest{UserID: uuid.New(), Title: " ", Message: "m"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, broker.Discard{Log: quietLogger()}, "q", quietLogger())
	ctx := context.Background()
	owner := uuid.New()

	n, err := svc.Create(ctx, CreateRequest{UserID: owner, Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.MarkRead(ctx, uuid.New(), n.ID), ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, owner, n.ID))

	unread, err := svc.ListForUser(ctx, owner, true, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestDeliveryHandler(t *testing.T) {
	handle := DeliveryHandler(quietLogger())

	body, _ := json.Marshal(Notification{ID: uuid.New(), UserID: uuid.New(), Kind: "order_status"})
	assert.NoError(t, handle(context.Background(), body))

	err := handle(context.Background(), []byte("{"))
	assert.True(t, broker.IsPermanent(err))

	body, _ = json.Marshal(Notification{ID: uuid.New()})
	assert.True(t, broker.IsPermanent(handle(context.Background(), body)))
}

func TestNotificationRoutes(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, broker.Discard{Log: quietLogger()}, "q", quietLogger())
	userID := uuid.New()
	require.NoError(t, svc.Notify(context.Background(), userID, "x", "a", "b"))
	require.NoError(t, svc.Notify(context.Background(), userID, "x", "c", "d"))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := session.Session{UserID: userID, Role: session.RoleCustomer}
			next.ServeHTTP(w, req.WithContext(session.NewContext(req.Context(), sess)))
		})
	})
	NewHandler(svc).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]int64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(2), body["updated"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/notifications", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
