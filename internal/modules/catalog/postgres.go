package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `id, supplier_id, name, brand, category, description, stock_quantity,
	cost_price, selling_price, image_url, is_active, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO products
		  (id, supplier_id, name, brand, category, description, stock_quantity,
		   cost_price, selling_price, image_url, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		p.ID, p.SupplierID, p.Name, p.Brand, p.Category, p.Description, p.StockQuantity,
		p.CostPrice, p.SellingPrice, p.ImageURL, p.IsActive).Scan(&p.CreatedAt, &p.UpdatedAt)
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: unknown category or supplier", ErrInvalidInput)
	}
	if err != nil {
		return err
	}

	if p.SupplierID != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO supplier_products (supplier_id, product_id) VALUES ($1, $2)`,
			*p.SupplierID, p.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var supplierID uuid.NullUUID
	err := scan(&p.ID, &supplierID, &p.Name, &p.Brand, &p.Category, &p.Description,
		&p.StockQuantity, &p.CostPrice, &p.SellingPrice, &p.ImageURL, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if supplierID.Valid {
		id := supplierID.UUID
		p.SupplierID = &id
	}
	return p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	n := 1
	if f.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, n)
		args = append(args, f.Category)
		n++
	}
	if f.Brand != "" {
		query += fmt.Sprintf(` AND LOWER(brand) = LOWER($%d)`, n)
		args = append(args, f.Brand)
		n++
	}
	if f.Search != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR brand ILIKE $%d OR description ILIKE $%d)`, n, n, n)
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n++
	}
	if f.SupplierID != nil {
		query += fmt.Sprintf(` AND supplier_id = $%d`, n)
		args = append(args, *f.SupplierID)
		n++
	}
	if f.ActiveOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n, n+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, brand=$2, category=$3, description=$4, stock_quantity=$5,
		    cost_price=$6, selling_price=$7, image_url=$8, is_active=$9, updated_at=$10
		WHERE id=$11`,
		p.Name, p.Brand, p.Category, p.Description, p.StockQuantity,
		p.CostPrice, p.SellingPrice, p.ImageURL, p.IsActive, p.UpdatedAt, p.ID)
	return affected(res, err)
}

func (r *postgresRepo) UpdateStock(ctx context.Context, id uuid.UUID, qty int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity=$1, updated_at=NOW() WHERE id=$2`, qty, id)
	return affected(res, err)
}

func (r *postgresRepo) UpdatePrice(ctx context.Context, id uuid.UUID, cost, selling decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET cost_price=$1, selling_price=$2, updated_at=NOW() WHERE id=$3`,
		cost, selling, id)
	return affected(res, err)
}

func (r *postgresRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active=$1, updated_at=NOW() WHERE id=$2`, active, id)
	return affected(res, err)
}

func (r *postgresRepo) AddMedia(ctx context.Context, m *Media) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO product_media (id, product_id, url, media_type, sort_order)
		VALUES ($1, $2, $3, $4,
		        (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM product_media WHERE product_id = $2))
		RETURNING sort_order, created_at`,
		m.ID, m.ProductID, m.URL, m.MediaType).Scan(&m.SortOrder, &m.CreatedAt)
	if database.IsForeignKeyViolation(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE products SET image_url=$1, updated_at=NOW()
		WHERE id=$2 AND image_url=''`, m.URL, m.ProductID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) ListMedia(ctx context.Context, productID uuid.UUID) ([]*Media, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, url, media_type, sort_order, created_at
		FROM product_media WHERE product_id=$1 ORDER BY sort_order`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	media := []*Media{}
	for rows.Next() {
		m := &Media{}
		if err := rows.Scan(&m.ID, &m.ProductID, &m.URL, &m.MediaType, &m.SortOrder, &m.CreatedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (r *postgresRepo) Stats(ctx context.Context, supplierID *uuid.UUID, lowStockThreshold int) (*Stats, error) {
	s := &Stats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COALESCE(SUM(stock_quantity), 0),
		       COUNT(*) FILTER (WHERE stock_quantity < $1),
		       COUNT(*) FILTER (WHERE stock_quantity = 0),
		       COALESCE(SUM(stock_quantity * cost_price), 0)
		FROM products
		WHERE $2::uuid IS NULL OR supplier_id = $2`,
		lowStockThreshold, supplierID).
		Scan(&s.ProductCount, &s.ActiveCount, &s.TotalStock, &s.LowStockCount, &s.OutOfStock, &s.InventoryValue)
	if err != nil {
		return nil, err
	}
	return s, nil
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
