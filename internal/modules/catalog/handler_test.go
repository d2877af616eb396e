package catalog

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, sess *session.Session) (http.Handler, *service) {
	t.Helper()
	svc, _, _ := newTestService(t)
	r := chi.NewRouter()
	if sess != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(session.NewContext(req.Context(), *sess)))
			})
		})
	}
	NewHandler(svc).RegisterRoutes(r)
	return r, svc
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	body := `{"name":"Tint","category":"makeup","stock_quantity":5,"cost_price":"4000","selling_price":"13000"}`

	anon, _ := newTestRouter(t, nil)
	rec := httptest.NewRecorder()
	anon.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/catalog/products", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	customer, _ := newTestRouter(t, &session.Session{UserID: uuid.New(), Role: session.RoleCustomer})
	rec = httptest.NewRecorder()
	customer.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/catalog/products", strings.NewReader(body)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin, _ := newTestRouter(t, &session.Session{UserID: uuid.New(), Role: session.RoleAdmin})
	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/catalog/products", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var p Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, CategoryMakeup, p.Category)
}

func TestListProductsFiltersByCategory(t *testing.T) {
	router, svc := newTestRouter(t, nil)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	skin := validRequest()
	_, err := svc.CreateProduct(ctx, nil, skin)
	require.NoError(t, err)
	makeup := validRequest()
	makeup.Name, makeup.Category = "Cushion", "makeup"
	_, err = svc.CreateProduct(ctx, nil, makeup)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/products?category=Makeup", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var products []Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, "Cushion", products[0].Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/products?category=perfume", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInactiveProductHiddenFromCustomers(t *testing.T) {
	router, svc := newTestRouter(t, nil)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	p, err := svc.CreateProduct(ctx, nil, validRequest())
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, p.ID, false))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/products/"+p.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/static/s-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/static/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []CategoryInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cats))
	assert.Equal(t, CategoryInfo{Slug: CategorySkincare, Name: "Skincare"}, cats[0])
}

func TestUploadMediaMultipart(t *testing.T) {
	router, svc := newTestRouter(t, &session.Session{UserID: uuid.New(), Role: session.RoleAdmin})
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	p, err := svc.CreateProduct(ctx, nil, validRequest())
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "swatch.png")
	require.NoError(t, err)
	fw.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/catalog/products/"+p.ID.String()+"/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var m Media
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, p.ID, m.ProductID)
}
