package content

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetPage(ctx context.Context, slug string) (*Page, error)
	ListPages(ctx context.Context, publishedOnly bool) ([]*Page, error)
	UpsertPage(ctx context.Context, p *Page) error
	ListVideos(ctx context.Context) ([]*Video, error)
	CreateVideo(ctx context.Context, v *Video) error
	DeleteVideo(ctx context.Context, id uuid.UUID) error
}
