package cart

import (
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/cart", func(r chi.Router) {
		r.Use(session.Required)
		r.Get("/", h.get)
		r.Delete("/", h.clear)
		r.Post("/items", h.add)
		r.Patch("/items/{id}", h.updateQuantity)
		r.Delete("/items/{id}", h.remove)
	})
}

var statusMap = []httpx.StatusMapping{
	{Err: ErrNotFound, Status: http.StatusNotFound},
	{Err: ErrQuantityOutOfRange, Status: http.StatusBadRequest},
	{Err: ErrProductUnavailable, Status: http.StatusUnprocessableEntity},
	{Err: ErrOutOfStock, Status: http.StatusUnprocessableEntity},
}

type addRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	c, err := h.service.Get(r.Context(), sess.UserID, r.URL.Query().Get("coupon"))
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var req addRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	item, err := h.service.Add(r.Context(), sess.UserID, req.ProductID, req.Quantity)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, item)
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req quantityRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.UpdateQuantity(r.Context(), sess.UserID, id, req.Quantity); err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Remove(r.Context(), sess.UserID, id); err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	if err := h.service.Clear(r.Context(), sess.UserID); err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
