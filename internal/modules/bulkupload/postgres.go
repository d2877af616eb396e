package bulkupload

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/database"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const jobColumns = `id, user_id, supplier_id, file_name, storage_key, status, processed, failed,
	errors, claimed_at, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, j *Job) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO bulk_uploads (id, user_id, supplier_id, file_name, storage_key, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		j.ID, j.UserID, j.SupplierID, j.FileName, j.StorageKey, j.Status).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert bulk upload: %w", err)
	}
	return nil
}

func scanJob(scan func(...interface{}) error) (*Job, error) {
	j := &Job{}
	var supplierID uuid.NullUUID
	var rowErrors []byte
	var claimedAt sql.NullTime
	if err := scan(&j.ID, &j.UserID, &supplierID, &j.FileName, &j.StorageKey, &j.Status,
		&j.Processed, &j.Failed, &rowErrors, &claimedAt, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	if supplierID.Valid {
		id := supplierID.UUID
		j.SupplierID = &id
	}
	if claimedAt.Valid {
		j.ClaimedAt = &claimedAt.Time
	}
	if len(rowErrors) > 0 {
		if err := json.Unmarshal(rowErrors, &j.Errors); err != nil {
			return nil, fmt.Errorf("decode bulk upload errors: %w", err)
		}
	}
	return j, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM bulk_uploads WHERE id = $1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return j, err
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM bulk_uploads
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*Job{}
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *postgresRepo) Claim(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bulk_uploads SET status = $2, claimed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $3`, id, StatusProcessing, StatusQueued)
	if err != nil {
		return fmt.Errorf("claim bulk upload: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyClaimed
	}
	return nil
}

func (r *postgresRepo) Finish(ctx context.Context, id uuid.UUID, res Result) error {
	var rowErrors []byte
	if len(res.Errors) > 0 {
		var err error
		if rowErrors, err = json.Marshal(res.Errors); err != nil {
			return err
		}
	}
	out, err := r.db.ExecContext(ctx, `
		UPDATE bulk_uploads
		SET status = $2, processed = $3, failed = $4, errors = $5, updated_at = NOW()
		WHERE id = $1 AND status IN ($6, $7)`,
		id, res.Status, res.Processed, res.Failed, database.NullableJSON(rowErrors),
		StatusQueued, StatusProcessing)
	if err != nil {
		return fmt.Errorf("finish bulk upload: %w", err)
	}
	n, err := out.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrJobClosed
	}
	return nil
}

func (r *postgresRepo) FailStale(ctx context.Context, claimedBefore time.Time) ([]uuid.UUID, error) {
	rowErrors, err := json.Marshal([]RowError{{Message: interruptedMessage}})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		UPDATE bulk_uploads SET status = $1, errors = $2, updated_at = NOW()
		WHERE status = $3 AND COALESCE(claimed_at, updated_at) < $4
		RETURNING id`, StatusFailed, rowErrors, StatusProcessing, claimedBefore)
	if err != nil {
		return nil, fmt.Errorf("fail stale bulk uploads: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
