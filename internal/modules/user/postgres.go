package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/database"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL profile repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `id, email, password_hash, full_name, phone, role, created_at, updated_at`

func (r *postgresRepository) CreateProfile(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (id, email, password_hash, full_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Email, p.PasswordHash, p.FullName, p.Phone, p.Role).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *postgresRepository) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	return r.scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email))
}

func (r *postgresRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return r.scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, p *Profile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET full_name = $1, phone = $2, updated_at = $3 WHERE id = $4`,
		p.FullName, p.Phone, time.Now(), p.ID)
	return affected(res, err)
}

func (r *postgresRepository) UpdateRole(ctx context.Context, id uuid.UUID, role session.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET role = $1, updated_at = $2 WHERE id = $3`, role, time.Now(), id)
	return affected(res, err)
}

// ── addresses ────────────────────────────────────────────────────────────────

const addressColumns = `id, user_id, label, recipient_name, phone, line1, line2, city,
	postal_code, country, is_default, created_at, updated_at`

func (r *postgresRepository) CreateAddress(ctx context.Context, a *Address) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO saved_addresses
		  (id, user_id, label, recipient_name, phone, line1, line2, city, postal_code, country, is_default)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		a.ID, a.UserID, a.Label, a.RecipientName, a.Phone, a.Line1, a.Line2,
		a.City, a.PostalCode, a.Country, a.IsDefault).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *postgresRepository) GetAddress(ctx context.Context, userID, id uuid.UUID) (*Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM saved_addresses WHERE id = $1 AND user_id = $2`, id, userID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	return a, err
}

func (r *postgresRepository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*Address, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+addressColumns+`
		FROM saved_addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := []*Address{}
	for rows.Next() {
		a, err := scanAddress(rows.Scan)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *postgresRepository) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_addresses WHERE id = $1 AND user_id = $2`, id, userID)
	return affected(res, err)
}

func (r *postgresRepository) SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE saved_addresses SET is_default = FALSE, updated_at = $1
		WHERE user_id = $2 AND is_default`, now, userID); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE saved_addresses SET is_default = TRUE, updated_at = $1
		WHERE id = $2 AND user_id = $3`, now, id, userID)
	if err := affected(res, err); err != nil {
		return err
	}
	return tx.Commit()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepository) scanProfile(row *sql.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Phone,
		&p.Role, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanAddress(scan func(...interface{}) error) (*Address, error) {
	a := &Address{}
	err := scan(&a.ID, &a.UserID, &a.Label, &a.RecipientName, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
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
