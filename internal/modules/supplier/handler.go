package supplier

import (
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
)

const maxMediaBytes = 10 << 20

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/supplier", func(r chi.Router) {
		r.Use(session.Required)
		r.Post("/register", h.register)
		r.Get("/me", h.getMine)
		r.Get("/stats", h.myStats)
		r.Get("/products", h.myProducts)
		r.Post("/products", h.createProduct)
		r.Patch("/products/{id}/stock", h.updateStock)
		r.Patch("/products/{id}/price", h.updatePrice)
		r.Post("/products/{id}/media", h.addMedia)
	})

	router.Route("/admin/suppliers", func(r chi.Router) {
		r.Use(session.RequireRole(session.RoleAdmin))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}/status", h.setStatus)
	})
}

var statusMap = append([]httpx.StatusMapping{
	{Err: ErrNotFound, Status: http.StatusNotFound},
	{Err: ErrAlreadyRegistered, Status: http.StatusConflict},
	{Err: ErrInvalidInput, Status: http.StatusBadRequest},
	{Err: ErrInvalidStatus, Status: http.StatusBadRequest},
	{Err: ErrInvalidTransition, Status: http.StatusUnprocessableEntity},
	{Err: ErrStatusChanged, Status: http.StatusConflict},
	{Err: ErrNotApproved, Status: http.StatusForbidden},
	{Err: ErrNotOwner, Status: http.StatusForbidden},
}, catalog.StatusMap...)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var req RegisterRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	sup, err := h.service.Register(r.Context(), sess.UserID, req)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, sup)
}

func (h *Handler) getMine(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	sup, err := h.service.GetByUser(r.Context(), sess.UserID)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, sup)
}

func (h *Handler) myStats(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	st, err := h.service.MyStats(r.Context(), sess.UserID)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
}

func (h *Handler) myProducts(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	f, err := catalog.FilterFromQuery(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	products, err := h.service.MyProducts(r.Context(), sess.UserID, f)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	var req catalog.ProductRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.CreateProduct(r.Context(), sess.UserID, req)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, p)
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req catalog.StockRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.UpdateStock(r.Context(), sess.UserID, id, req.StockQuantity); err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req catalog.PriceRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.UpdatePrice(r.Context(), sess.UserID, id, req.CostPrice, req.SellingPrice); err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addMedia(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxMediaBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	m, err := h.service.AddMedia(r.Context(), sess.UserID, id, header.Filename, file)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, m)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.List(r.Context(), Status(r.URL.Query().Get("status")))
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, suppliers)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	sup, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, sup)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req StatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	sup, err := h.service.SetStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		httpx.Fail(w, err, statusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, sup)
}
