package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/supplier"
)

// Source loads the rows a report is built from.
type Source interface {
	// Orders returns orders created at or after since.
	Orders(ctx context.Context, since time.Time) ([]*order.Order, error)
	Products(ctx context.Context) ([]*catalog.Product, error)
	Suppliers(ctx context.Context) ([]*supplier.Supplier, error)
}

type postgresSource struct{ db *sql.DB }

func NewPostgresSource(db *sql.DB) Source { return &postgresSource{db: db} }

func (s *postgresSource) Orders(ctx context.Context, since time.Time) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, status, total, currency, items, created_at
		FROM orders WHERE created_at >= $1 ORDER BY created_at`, since)
	if err != nil {
		return nil, fmt.Errorf("query report orders: %w", err)
	}
	defer rows.Close()

	var out []*order.Order
	for rows.Next() {
		o := &order.Order{}
		var items []byte
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.Currency, &items, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = items
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *postgresSource) Products(ctx context.Context) ([]*catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, brand, category, stock_quantity, cost_price, selling_price, is_active
		FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query report products: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Product
	for rows.Next() {
		p := &catalog.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.StockQuantity,
			&p.CostPrice, &p.SellingPrice, &p.IsActive); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *postgresSource) Suppliers(ctx context.Context) ([]*supplier.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, company_name, status FROM suppliers`)
	if err != nil {
		return nil, fmt.Errorf("query report suppliers: %w", err)
	}
	defer rows.Close()

	var out []*supplier.Supplier
	for rows.Next() {
		sup := &supplier.Supplier{}
		if err := rows.Scan(&sup.ID, &sup.CompanyName, &sup.Status); err != nil {
			return nil, err
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}
