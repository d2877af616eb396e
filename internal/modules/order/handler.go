package order

import (
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/orders", func(r chi.Router) {
		r.Use(session.Required)
		r.Get("/", h.listMine)
		r.Get("/{id}", h.getMine)
	})

	router.Route("/admin/orders", func(r chi.Router) {
		r.Use(session.RequireRole(session.RoleAdmin))
		r.Get("/", h.listAll)
		r.Get("/{id}", h.get)
		r.Post("/{id}/advance", h.advance)
		r.Post("/{id}/return", h.markReturned)
		r.Post("/{id}/cancel", h.cancel)
	})
}

var statusMap = []httpx.StatusMapping{
	{Err: ErrNotFound, Status: http.StatusNotFound},
	{Err: ErrInvalidStatus, Status: http.StatusBadRequest},
	{Err: ErrNoNextStatus, Status: http.StatusUnprocessableEntity},
	{Err: ErrInvalidTransition, Status: http.StatusUnprocessableEntity},
	{Err: ErrStatusChanged, Status: http.StatusConflict},
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	orders, err := h.service.ListForCustomer(r.Context(), sess.UserID)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, orders)
}

func (h *Handler) getMine(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.GetForCustomer(r.Context(), sess.UserID, id)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	f := ListFilter{
		Status: Status(r.URL.Query().Get("status")),
		Limit:  httpx.QueryInt(r, "limit", 0),
		Offset: httpx.QueryInt(r, "offset", 0),
	}
	orders, err := h.service.ListAll(r.Context(), f)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, orders)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	// The body is optional: an advance without a tracking code is valid.
	var req AdvanceRequest
	if r.ContentLength > 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	o, err := h.service.Advance(r.Context(), id, req.TrackingCode)
	respondTransition(w, o, err)
}

func (h *Handler) markReturned(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.MarkReturned(r.Context(), id)
	respondTransition(w, o, err)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.Cancel(r.Context(), id)
	respondTransition(w, o, err)
}

func respondTransition(w http.ResponseWriter, o *Order, err error) {
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}
