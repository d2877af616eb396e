package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func TestRequired(t *testing.T) {
	h := Required(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(NewContext(req.Context(), Session{UserID: uuid.New(), Role: RoleCustomer}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(RoleAdmin)(okHandler())

	tests := []struct {
		name string
		sess *Session
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"customer", &Session{UserID: uuid.New(), Role: RoleCustomer}, http.StatusForbidden},
		{"admin", &Session{UserID: uuid.New(), Role: RoleAdmin}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.sess != nil {
				req = req.WithContext(NewContext(req.Context(), *tt.sess))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleSupplier.Valid())
	assert.False(t, Role("owner").Valid())
}
