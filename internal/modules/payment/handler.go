package payment

import (
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the checkout endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/checkout", func(r chi.Router) {
		r.Use(session.Required)
		r.Post("/", h.createCheckout)
		r.Get("/{session_id}", h.getSession)
		r.Post("/{session_id}/verify", h.verify)
	})
}

var statusMap = []httpx.StatusMapping{
	{Err: ErrNotFound, Status: http.StatusNotFound},
	{Err: ErrEmptyCart, Status: http.StatusBadRequest},
	{Err: ErrInvalidShippingMethod, Status: http.StatusBadRequest},
	{Err: ErrInvalidAddress, Status: http.StatusBadRequest},
	{Err: ErrInvalidCoupon, Status: http.StatusBadRequest},
	{Err: ErrUnavailableItems, Status: http.StatusConflict},
}

func (h *Handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var req CheckoutRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.service.CreateCheckout(r.Context(), sess.UserID, &req)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, resp)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "session_id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	cs, err := h.service.GetSession(r.Context(), sess.UserID, id)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, cs)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "session_id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.VerifyPayment(r.Context(), sess.UserID, id)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}
