package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/database"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetPage(ctx context.Context, slug string) (*Page, error) {
	p := &Page{}
	err := r.db.QueryRowContext(ctx,
		`SELECT slug, title, body, published, updated_at FROM static_pages WHERE slug = $1`, slug).
		Scan(&p.Slug, &p.Title, &p.Body, &p.Published, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *postgresRepo) ListPages(ctx context.Context, publishedOnly bool) ([]*Page, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT slug, title, '', published, updated_at FROM static_pages
		WHERE published OR NOT $1 ORDER BY slug`, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []*Page{}
	for rows.Next() {
		p := &Page{}
		if err := rows.Scan(&p.Slug, &p.Title, &p.Body, &p.Published, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (r *postgresRepo) UpsertPage(ctx context.Context, p *Page) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO static_pages (slug, title, body, published)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE
		SET title = EXCLUDED.title, body = EXCLUDED.body,
		    published = EXCLUDED.published, updated_at = NOW()
		RETURNING updated_at`, p.Slug, p.Title, p.Body, p.Published).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListVideos(ctx context.Context) ([]*Video, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, url, product_id, sort_order, created_at FROM videos ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []*Video{}
	for rows.Next() {
		v := &Video{}
		var productID uuid.NullUUID
		if err := rows.Scan(&v.ID, &v.Title, &v.URL, &productID, &v.SortOrder, &v.CreatedAt); err != nil {
			return nil, err
		}
		if productID.Valid {
			id := productID.UUID
			v.ProductID = &id
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *postgresRepo) CreateVideo(ctx context.Context, v *Video) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO videos (id, title, url, product_id, sort_order)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		v.ID, v.Title, v.URL, v.ProductID, v.SortOrder).Scan(&v.CreatedAt)
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: product does not exist", ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *postgresRepo) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
