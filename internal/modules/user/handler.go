package user

import (
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/users/register", h.register)

	router.Route("/me", func(r chi.Router) {
		r.Use(session.Required)
		r.Get("/", h.getMe)
		r.Patch("/", h.updateMe)
		r.Get("/addresses", h.listAddresses)
		r.Post("/addresses", h.addAddress)
		r.Delete("/addresses/{id}", h.deleteAddress)
		r.Post("/addresses/{id}/default", h.setDefaultAddress)
	})
}

var statusMap = []httpx.StatusMapping{
	{Err: ErrInvalidInput, Status: http.StatusBadRequest},
	{Err: ErrEmailTaken, Status: http.StatusConflict},
	{Err: ErrNotFound, Status: http.StatusNotFound},
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.service.Register(r.Context(), req)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, p)
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	p, err := h.service.GetProfile(r.Context(), sess.UserID)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var req UpdateProfileRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.UpdateProfile(r.Context(), sess.UserID, req)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	addresses, err := h.service.ListAddresses(r.Context(), sess.UserID)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, addresses)
}

func (h *Handler) addAddress(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var req AddressRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.service.AddAddress(r.Context(), sess.UserID, req)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, a)
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteAddress(r.Context(), sess.UserID, id); err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setDefaultAddress(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.SetDefaultAddress(r.Context(), sess.UserID, id); err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
