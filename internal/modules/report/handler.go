package report

import (
	"fmt"
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
)

type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/admin/reports", func(r chi.Router) {
		r.Use(session.RequireRole(session.RoleAdmin))
		r.Get("/{type}", h.download)
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var req Request
	var err error
	if req.Type, err = ParseType(chi.URLParam(r, "type")); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Period, err = ParsePeriod(r.URL.Query().Get("period")); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Format, err = ParseFormat(r.URL.Query().Get("format")); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := h.service.Generate(r.Context(), req)
	if err != nil {
		httpx.Fail(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.WriteHeader(http.StatusOK)
	w.Write(f.Body)
}
