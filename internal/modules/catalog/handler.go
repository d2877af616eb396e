package catalog

import (
	"net/http"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxMediaBytes = 10 << 20

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/catalog", func(r chi.Router) {
		r.Get("/categories", h.listCategories)
		r.Get("/static", h.listStatic)
		r.Get("/static/{id}", h.getStatic)
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/products/{id}/media", h.listMedia)

		r.Group(func(r chi.Router) {
			r.Use(session.RequireRole(session.RoleAdmin))
			r.Get("/stats", h.stats)
			r.Post("/products", h.createProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Patch("/products/{id}/stock", h.updateStock)
			r.Patch("/products/{id}/price", h.updatePrice)
			r.Patch("/products/{id}/active", h.setActive)
			r.Post("/products/{id}/media", h.addMedia)
		})
	})
}

// StatusMap maps catalog errors to HTTP statuses. Other modules that surface
// catalog errors reuse it.
var StatusMap = []httpx.StatusMapping{
	{Err: ErrNotFound, Status: http.StatusNotFound},
	{Err: ErrInvalidCategory, Status: http.StatusBadRequest},
	{Err: ErrInvalidInput, Status: http.StatusBadRequest},
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	out := []CategoryInfo{}
	for _, c := range Categories() {
		out = append(out, CategoryInfo{Slug: c, Name: c.DisplayName()})
	}
	httpx.Respond(w, http.StatusOK, out)
}

func (h *Handler) listStatic(w http.ResponseWriter, r *http.Request) {
	var category Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, err := ParseCategory(raw)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		category = c
	}
	httpx.Respond(w, http.StatusOK, StaticProducts(category))
}

func (h *Handler) getStatic(w http.ResponseWriter, r *http.Request) {
	p, ok := StaticProductByID(chi.URLParam(r, "id"))
	if !ok {
		httpx.Error(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

// FilterFromQuery reads category, brand, q, limit and offset query parameters.
func FilterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		Brand:      q.Get("brand"),
		Search:     q.Get("q"),
		ActiveOnly: true,
		Limit:      httpx.QueryInt(r, "limit", 0),
		Offset:     httpx.QueryInt(r, "offset", 0),
	}
	if raw := q.Get("category"); raw != "" {
		c, err := ParseCategory(raw)
		if err != nil {
			return Filter{}, err
		}
		f.Category = c
	}
	return f, nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	f, err := FilterFromQuery(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if sess, ok := session.FromContext(r.Context()); ok && sess.IsAdmin() && r.URL.Query().Get("active") == "false" {
		f.ActiveOnly = false
	}

	products, err := h.service.ListProducts(r.Context(), f)
	if err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	if !p.IsActive {
		if sess, ok := session.FromContext(r.Context()); !ok || !sess.IsAdmin() {
			httpx.Error(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) listMedia(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	media, err := h.service.ListMedia(r.Context(), id)
	if err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, media)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context(), nil)
	if err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.CreateProduct(r.Context(), nil, req)
	if err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ProductRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

// StockRequest sets an absolute stock level.
type StockRequest struct {
	StockQuantity int `json:"stock_quantity"`
}

// PriceRequest replaces both prices.
type PriceRequest struct {
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req StockRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.UpdateStock(r.Context(), id, req.StockQuantity); err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req PriceRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.UpdatePrice(r.Context(), id, req.CostPrice, req.SellingPrice); err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.SetActive(r.Context(), id, req.Active); err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addMedia(w http.ResponseWriter, r *http.Request) {
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

	m, err := h.service.AddMedia(r.Context(), id, header.Filename, file)
	if err != nil {
		httpx.Fail(w, err, StatusMap...)
		return
	}
	httpx.Respond(w, http.StatusCreated, m)
}
