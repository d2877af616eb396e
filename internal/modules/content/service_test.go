package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	pages  map[string]*Page
	videos []*Video
}

func newMemRepo() *memRepo { return &memRepo{pages: map[string]*Page{}} }

func (m *memRepo) GetPage(_ context.Context, slug string) (*Page, error) {
	p, ok := m.pages[slug]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) ListPages(_ context.Context, publishedOnly bool) ([]*Page, error) {
	out := []*Page{}
	for _, p := range m.pages {
		if p.Published || !publishedOnly {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *memRepo) UpsertPage(_ context.Context, p *Page) error {
	p.UpdatedAt = time.Now()
	cp := *p
	m.pages[p.Slug] = &cp
	return nil
}

func (m *memRepo) ListVideos(context.Context) ([]*Video, error) { return m.videos, nil }

func (m *memRepo) CreateVideo(_ context.Context, v *Video) error {
	m.videos = append(m.videos, v)
	return nil
}

func (m *memRepo) DeleteVideo(_ context.Context, id uuid.UUID) error {
	for i, v := range m.videos {
		if v.ID == id {
			m.videos = append(m.videos[:i], m.videos[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func TestPages(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	draft := false

	_, err := svc.UpsertPage(ctx, "About-Us", PageRequest{Title: "About", Body: "We love skincare."})
	require.NoError(t, err)
	_, err = svc.UpsertPage(ctx, "returns", PageRequest{Title: "Returns", Published: &draft})
	require.NoError(t, err)

	p, err := svc.GetPage(ctx, "about-us", false)
	require.NoError(t, err)
	assert.Equal(t, "We love skincare.", p.Body)

	_, err = svc.GetPage(ctx, "returns", false)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetPage(ctx, "returns", true)
	assert.NoError(t, err)
	_, err = svc.GetPage(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)

	public, _ := svc.ListPages(ctx, false)
	assert.Len(t, public, 1)
	all, _ := svc.ListPages(ctx, true)
	assert.Len(t, all, 2)

	_, err = svc.UpsertPage(ctx, "bad slug!", PageRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.UpsertPage(ctx, "ok", PageRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVideos(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	v, err := svc.CreateVideo(ctx, VideoRequest{Title: "Glass skin routine", URL: "https://video.test/v/1"})
	require.NoError(t, err)
	_, err = svc.CreateVideo(ctx, VideoRequest{Title: "x", URL: "javascript:alert(1)"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	videos, _ := svc.ListVideos(ctx)
	require.Len(t, videos, 1)

	require.NoError(t, svc.DeleteVideo(ctx, v.ID))
	assert.ErrorIs(t, svc.DeleteVideo(ctx, v.ID), ErrNotFound)
}

func TestPageEndpoints(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.UpsertPage(context.Background(), "faq", PageRequest{Title: "FAQ", Body: "Q&A"})
	require.NoError(t, err)

	router := func(sess *session.Session) http.Handler {
		r := chi.NewRouter()
		if sess != nil {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(session.NewContext(req.Context(), *sess)))
				})
			})
		}
		NewHandler(svc).RegisterRoutes(r)
		return r
	}

	rec := httptest.NewRecorder()
	router(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages/faq", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var p Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "FAQ", p.Title)

	rec = httptest.NewRecorder()
	router(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/content/pages/faq", strings.NewReader(`{"title":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	admin := router(&session.Session{UserID: uuid.New(), Role: session.RoleAdmin})
	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/content/pages/faq",
		strings.NewReader(`{"title":"FAQ","body":"updated","published":false}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages/faq", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "unpublished page hidden from the public")

	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages/faq", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
