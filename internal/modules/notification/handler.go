package notification

import (
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
)

type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/notifications", func(r chi.Router) {
		r.Use(session.Required)
		r.Get("/", h.list)
		r.Get("/unread-count", h.unreadCount)
		r.Post("/read-all", h.markAllRead)
		r.Post("/{id}/read", h.markRead)
	})

	router.With(session.RequireRole(session.RoleAdmin)).Post("/admin/notifications", h.create)
}

var statusMap = []httpx.StatusMapping{
	{Err: ErrNotFound, Status: http.StatusNotFound},
	{Err: ErrInvalidInput, Status: http.StatusBadRequest},
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	unread := r.URL.Query().Get("unread") == "true"
	out, err := h.service.ListForUser(r.Context(), sess.UserID, unread, httpx.QueryInt(r, "limit", 0))
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, out)
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	n, err := h.service.UnreadCount(r.Context(), sess.UserID)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.MarkRead(r.Context(), sess.UserID, id); err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	n, err := h.service.MarkAllRead(r.Context(), sess.UserID)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, n)
}
