package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, s *CheckoutSession) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO checkout_sessions
		  (id, user_id, status, provider_ref, checkout_url, items, shipping_address,
		   shipping_method, coupon_code, subtotal, shipping_fee, discount, total, currency)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		s.ID, s.UserID, s.Status, s.ProviderRef, s.CheckoutURL, []byte(s.Items),
		[]byte(s.ShippingAddress), s.ShippingMethod, s.CouponCode, s.Subtotal,
		s.ShippingFee, s.Discount, s.Total, s.Currency).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert checkout session: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*CheckoutSession, error) {
	s := &CheckoutSession{}
	var items, address []byte
	var orderID uuid.NullUUID
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, provider_ref, checkout_url, items, shipping_address,
		       shipping_method, coupon_code, subtotal, shipping_fee, discount, total,
		       currency, order_id, created_at, updated_at
		FROM checkout_sessions WHERE id = $1`, id).Scan(
		&s.ID, &s.UserID, &s.Status, &s.ProviderRef, &s.CheckoutURL, &items, &address,
		&s.ShippingMethod, &s.CouponCode, &s.Subtotal, &s.ShippingFee, &s.Discount,
		&s.Total, &s.Currency, &orderID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Items = items
	s.ShippingAddress = address
	if orderID.Valid {
		oid := orderID.UUID
		s.OrderID = &oid
	}
	return s, nil
}

func (r *postgresRepo) MarkPaid(ctx context.Context, id, orderID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE checkout_sessions SET status = $2, order_id = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`, id, SessionPaid, orderID, SessionPending)
	if err != nil {
		return fmt.Errorf("mark session paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionClosed
	}
	return nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id uuid.UUID, status SessionStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE checkout_sessions SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
