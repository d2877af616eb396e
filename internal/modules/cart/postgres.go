package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) ListLines(ctx context.Context, userID uuid.UUID) ([]*Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.product_id, p.name, p.brand, p.image_url, p.selling_price,
		       c.quantity, p.stock_quantity, p.is_active
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []*Line{}
	for rows.Next() {
		l := &Line{}
		if err := rows.Scan(&l.ItemID, &l.ProductID, &l.Name, &l.Brand, &l.ImageURL,
			&l.UnitPrice, &l.Quantity, &l.StockQuantity, &l.IsActive); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *postgresRepo) Add(ctx context.Context, item *Item) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		WHERE cart_items.quantity + EXCLUDED.quantity <= $5
		RETURNING id, quantity, created_at, updated_at`,
		item.ID, item.UserID, item.ProductID, item.Quantity, MaxQuantity).
		Scan(&item.ID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrQuantityOutOfRange
	}
	return err
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3`, qty, itemID, userID)
	return affected(res, err)
}

func (r *postgresRepo) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	return affected(res, err)
}

func (r *postgresRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
