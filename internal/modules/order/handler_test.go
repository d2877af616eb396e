package order

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routerAs(f *fixture, sess *session.Session) http.Handler {
	r := chi.NewRouter()
	if sess != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(session.NewContext(req.Context(), *sess)))
			})
		})
	}
	NewHandler(f.svc).RegisterRoutes(r)
	return r
}

func TestAdminAdvanceEndpoint(t *testing.T) {
	f := newFixture()
	o := f.seed(t, StatusProcessing)
	admin := routerAs(f, &session.Session{UserID: uuid.New(), Role: session.RoleAdmin})

	rec := httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/orders/"+o.ID.String()+"/advance",
		strings.NewReader(`{"tracking_code":"HJ-77"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var got Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, StatusDispatched, got.Status)
	assert.Equal(t, "HJ-77", got.TrackingCode)

	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/orders/"+o.ID.String()+"/return", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/orders/"+uuid.NewString()+"/advance", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	f := newFixture()
	o := f.seed(t, StatusProcessing)
	customer := routerAs(f, &session.Session{UserID: o.UserID, Role: session.RoleCustomer})

	rec := httptest.NewRecorder()
	customer.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/orders/"+o.ID.String()+"/advance", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomerListsOwnOrders(t *testing.T) {
	f := newFixture()
	mine := f.seed(t, StatusProcessing)
	f.seed(t, StatusDelivered)
	customer := routerAs(f, &session.Session{UserID: mine.UserID, Role: session.RoleCustomer})

	rec := httptest.NewRecorder()
	customer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)
}

func TestAdminListRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	admin := routerAs(f, &session.Session{UserID: uuid.New(), Role: session.RoleAdmin})

	rec := httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders/?status=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
