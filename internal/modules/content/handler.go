package content

import (
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
)

type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/pages", h.listPages)
	router.Get("/pages/{slug}", h.getPage)
	router.Get("/videos", h.listVideos)

	router.Route("/admin/content", func(r chi.Router) {
		r.Use(session.RequireRole(session.RoleAdmin))
		r.Put("/pages/{slug}", h.upsertPage)
		r.Post("/videos", h.createVideo)
		r.Delete("/videos/{id}", h.deleteVideo)
	})
}

var statusMap = []httpx.StatusMapping{
	{Err: ErrNotFound, Status: http.StatusNotFound},
	{Err: ErrInvalidInput, Status: http.StatusBadRequest},
}

func isAdmin(r *http.Request) bool {
	sess, ok := session.FromContext(r.Context())
	return ok && sess.IsAdmin()
}

func (h *Handler) listPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.service.ListPages(r.Context(), isAdmin(r))
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, pages)
}

func (h *Handler) getPage(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPage(r.Context(), chi.URLParam(r, "slug"), isAdmin(r))
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) upsertPage(w http.ResponseWriter, r *http.Request) {
	var req PageRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.UpsertPage(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) listVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.service.ListVideos(r.Context())
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, videos)
}

func (h *Handler) createVideo(w http.ResponseWriter, r *http.Request) {
	var req VideoRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.service.CreateVideo(r.Context(), req)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, v)
}

func (h *Handler) deleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteVideo(r.Context(), id); err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
