package supplier

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/database"
	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL supplier repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const supplierColumns = `id, user_id, company_name, contact_name, contact_email, phone,
	business_number, status, commission_rate, total_revenue, product_count, rating,
	created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, s *Supplier) error {
	query := `
		INSERT INTO suppliers
		  (id, user_id, company_name, contact_name, contact_email, phone, business_number,
		   status, commission_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING total_revenue, product_count, rating, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, s.ID, s.UserID, s.CompanyName, s.ContactName,
		s.ContactEmail, s.Phone, s.BusinessNumber, s.Status, s.CommissionRate).
		Scan(&s.TotalRevenue, &s.ProductCount, &s.Rating, &s.CreatedAt, &s.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return ErrAlreadyRegistered
	}
	return err
}

func scanSupplier(scan func(...interface{}) error) (*Supplier, error) {
	s := &Supplier{}
	err := scan(&s.ID, &s.UserID, &s.CompanyName, &s.ContactName, &s.ContactEmail, &s.Phone,
		&s.BusinessNumber, &s.Status, &s.CommissionRate, &s.TotalRevenue, &s.ProductCount,
		&s.Rating, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	return scanSupplier(r.db.QueryRowContext(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id).Scan)
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Supplier, error) {
	return scanSupplier(r.db.QueryRowContext(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE user_id = $1`, userID).Scan)
}

func (r *postgresRepository) List(ctx context.Context, status Status) ([]*Supplier, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+supplierColumns+`
		FROM suppliers WHERE $1 = '' OR status = $1 ORDER BY created_at DESC`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := []*Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows.Scan)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE suppliers SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now(), id, from)
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
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrStatusChanged
}

func (r *postgresRepository) RefreshProductCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE suppliers
		SET product_count = (SELECT COUNT(*) FROM supplier_products WHERE supplier_id = $1),
		    updated_at = NOW()
		WHERE id = $1`, id)
	return err
}
