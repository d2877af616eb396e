package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/database"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, user_id, status, total, currency, items, shipping_address, shipping_method,
	coupon_code, checkout_session_id, tracking_code, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders
		  (id, user_id, status, total, currency, items, shipping_address, shipping_method,
		   coupon_code, checkout_session_id, tracking_code)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.Status, o.Total, o.Currency, []byte(o.Items),
		[]byte(o.ShippingAddress), o.ShippingMethod, o.CouponCode, o.CheckoutSessionID,
		database.NilIfEmpty(o.TrackingCode)).Scan(&o.CreatedAt, &o.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return ErrDuplicateCheckout
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func scanOrder(scan func(...interface{}) error) (*Order, error) {
	o := &Order{}
	var items, address []byte
	var sessionID uuid.NullUUID
	var tracking sql.NullString
	err := scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.Currency, &items, &address,
		&o.ShippingMethod, &o.CouponCode, &sessionID, &tracking, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Items = items
	o.ShippingAddress = address
	if sessionID.Valid {
		id := sessionID.UUID
		o.CheckoutSessionID = &id
	}
	o.TrackingCode = tracking.String
	return o, nil
}

func (r *postgresRepo) getOne(ctx context.Context, where string, arg interface{}) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+where+` = $1`, arg).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getOne(ctx, "id", id)
}

func (r *postgresRepo) GetByCheckoutSession(ctx context.Context, sessionID uuid.UUID) (*Order, error) {
	return r.getOne(ctx, "checkout_session_id", sessionID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []interface{}{}
	n := 1
	if f.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, n)
		args = append(args, f.Status)
		n++
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n, n+1)
		args = append(args, f.Limit, f.Offset)
	}
	return r.query(ctx, query, args...)
}

func (r *postgresRepo) query(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, trackingCode *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, tracking_code = COALESCE($2, tracking_code), updated_at = $3
		WHERE id = $4 AND status = $5`,
		to, trackingCode, time.Now(), id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusChanged
}
