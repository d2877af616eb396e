package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

type Service interface {
	// GetPage hides unpublished pages unless includeDrafts is set.
	GetPage(ctx context.Context, slug string, includeDrafts bool) (*Page, error)
	ListPages(ctx context.Context, includeDrafts bool) ([]*Page, error)
	UpsertPage(ctx context.Context, slug string, req PageRequest) (*Page, error)
	ListVideos(ctx context.Context) ([]*Video, error)
	CreateVideo(ctx context.Context, req VideoRequest) (*Video, error)
	DeleteVideo(ctx context.Context, id uuid.UUID) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) GetPage(ctx context.Context, slug string, includeDrafts bool) (*Page, error) {
	p, err := s.repo.GetPage(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, err
	}
	if !p.Published && !includeDrafts {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *service) ListPages(ctx context.Context, includeDrafts bool) ([]*Page, error) {
	return s.repo.ListPages(ctx, !includeDrafts)
}

func (s *service) UpsertPage(ctx context.Context, slug string, req PageRequest) (*Page, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug must be lowercase words joined by hyphens", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	p := &Page{Slug: slug, Title: strings.TrimSpace(req.Title), Body: req.Body, Published: true}
	if req.Published != nil {
		p.Published = *req.Published
	}
	if err := s.repo.UpsertPage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListVideos(ctx context.Context) ([]*Video, error) {
	return s.repo.ListVideos(ctx)
}

func (s *service) CreateVideo(ctx context.Context, req VideoRequest) (*Video, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: url must be an absolute http(s) url", ErrInvalidInput)
	}
	v := &Video{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(req.Title),
		URL:       u.String(),
		ProductID: req.ProductID,
		SortOrder: req.SortOrder,
	}
	if err := s.repo.CreateVideo(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteVideo(ctx, id)
}
