package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*service, *memRepo, *storage.Local) {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir(), "http://cdn.test/uploads")
	require.NoError(t, err)
	repo := newMemRepo()
	return NewService(repo, store, 10).(*service), repo, store
}

func validRequest() ProductRequest {
	return ProductRequest{
		Name:          "Snail Mucin Essence",
		Brand:         "COSRX",
		Category:      "Skincare",
		StockQuantity: 40,
		CostPrice:     decimal.NewFromInt(12000),
		SellingPrice:  decimal.NewFromInt(25000),
	}
}

func TestParseCategory(t *testing.T) {
	for _, raw := range []string{"skincare", "Skincare", " MAKEUP ", "baby", "Life"} {
		c, err := ParseCategory(raw)
		require.NoError(t, err, raw)
		assert.True(t, c.Valid())
	}
	_, err := ParseCategory("fragrance")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	assert.Equal(t, "Makeup", CategoryMakeup.DisplayName())
	assert.Len(t, Categories(), 4)
}

func TestCreateProduct(t *testing.T) {
	svc, repo, _ := newTestService(t)
	supplierID := uuid.New()

	p, err := svc.CreateProduct(context.Background(), &supplierID, validRequest())
	require.NoError(t, err)
	assert.Equal(t, CategorySkincare, p.Category)
	assert.True(t, p.IsActive)
	assert.Equal(t, supplierID, repo.links[p.ID])
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*ProductRequest)
		want   error
	}{
		{"missing name", func(r *ProductRequest) { r.Name = " " }, ErrInvalidInput},
		{"unknown category", func(r *ProductRequest) { r.Category = "perfume" }, ErrInvalidCategory},
		{"negative stock", func(r *ProductRequest) { r.StockQuantity = -1 }, ErrInvalidInput},
		{"negative price", func(r *ProductRequest) { r.SellingPrice = decimal.NewFromInt(-5) }, ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.CreateProduct(context.Background(), nil, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestStockAndPriceUpdates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, nil, validRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateStock(ctx, p.ID, -3), ErrInvalidInput)
	require.NoError(t, svc.UpdateStock(ctx, p.ID, 0))
	assert.ErrorIs(t, svc.UpdateStock(ctx, uuid.New(), 5), ErrNotFound)

	assert.ErrorIs(t, svc.UpdatePrice(ctx, p.ID, decimal.NewFromInt(-1), decimal.NewFromInt(1)), ErrInvalidInput)
	require.NoError(t, svc.UpdatePrice(ctx, p.ID, decimal.NewFromInt(9000), decimal.NewFromInt(21000)))

	require.NoError(t, svc.SetActive(ctx, p.ID, false))
	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
	assert.True(t, got.SellingPrice.Equal(decimal.NewFromInt(21000)))
	assert.False(t, got.IsActive)

	active, err := svc.ListProducts(ctx, Filter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAddMediaStoresFileAndPromotesImage(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, nil, validRequest())
	require.NoError(t, err)

	m, err := svc.AddMedia(ctx, p.ID, "front shot.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "image", m.MediaType)
	assert.True(t, strings.HasPrefix(m.URL, "http://cdn.test/uploads/product-images/"))

	entries, err := os.ReadDir(filepath.Join(store.Dir(), storage.BucketProductImages))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	f, err := os.Open(filepath.Join(store.Dir(), storage.BucketProductImages, entries[0].Name()))
	require.NoError(t, err)
	defer f.Close()
	body, _ := io.ReadAll(f)
	assert.Equal(t, "jpeg-bytes", string(body))

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, m.URL, got.ImageURL)

	clip, err := svc.AddMedia(ctx, p.ID, "howto.mp4", strings.NewReader("mp4"))
	require.NoError(t, err)
	assert.Equal(t, "video", clip.MediaType)
	assert.Equal(t, 1, clip.SortOrder)

	_, err = svc.AddMedia(ctx, uuid.New(), "x.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsScopedToSupplier(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	supplierID := uuid.New()

	for _, stock := range []int{0, 3, 9, 10, 50} {
		req := validRequest()
		req.StockQuantity = stock
		_, err := svc.CreateProduct(ctx, &supplierID, req)
		require.NoError(t, err)
	}
	_, err := svc.CreateProduct(ctx, nil, validRequest())
	require.NoError(t, err)

	st, err := svc.Stats(ctx, &supplierID)
	require.NoError(t, err)
	assert.Equal(t, 5, st.ProductCount)
	assert.Equal(t, 72, st.TotalStock)
	// 0, 3 and 9 are below the threshold of 10.
	assert.Equal(t, 3, st.LowStockCount)
	assert.Equal(t, 1, st.OutOfStock)

	all, err := svc.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, all.ProductCount)
}

func TestStaticCatalog(t *testing.T) {
	all := StaticProducts("")
	require.NotEmpty(t, all)

	for _, p := range StaticProducts(CategoryMakeup) {
		assert.Equal(t, CategoryMakeup, p.Category)
	}

	p, ok := StaticProductByID(all[0].ID)
	require.True(t, ok)
	assert.Equal(t, all[0].Name, p.Name)

	_, ok = StaticProductByID("missing")
	assert.False(t, ok)
}
