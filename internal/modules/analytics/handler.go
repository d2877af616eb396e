package analytics

import (
	"net/http"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
)

const maxDays = 366

type Handler struct {
	store Store
	now   func() time.Time
}

func NewHandler(store Store) *Handler { return &Handler{store: store, now: time.Now} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/admin/analytics", func(r chi.Router) {
		r.Use(session.RequireRole(session.RoleAdmin))
		r.Get("/revenue", h.revenue)
	})
}

// revenue reports net revenue per day for the last ?days= days (default 30).
func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	days := httpx.QueryInt(r, "days", 30)
	if days <= 0 || days > maxDays {
		httpx.Error(w, http.StatusBadRequest, "days must be between 1 and 366")
		return
	}
	y, m, d := h.now().UTC().Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	out, err := h.store.RevenueByDay(r.Context(), since)
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, out)
}
