package analytics

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config locates the ClickHouse server.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// ClickHouse is a Store backed by the native ClickHouse protocol.
type ClickHouse struct {
	conn     driver.Conn
	database string
}

func Open(ctx context.Context, cfg Config) (*ClickHouse, error) {
	opts := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		DialTimeout:  30 * time.Second,
	}
	// 8443 is the TLS port on managed ClickHouse.
	if cfg.Port == 8443 {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return &ClickHouse{conn: conn, database: cfg.Database}, nil
}

func (c *ClickHouse) Close() error { return c.conn.Close() }

// EnsureTable creates the order_events fact table if it is missing.
func (c *ClickHouse) EnsureTable(ctx context.Context) error {
	return c.conn.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.order_events (
			order_id      UUID,
			user_id       UUID,
			event         LowCardinality(String),
			status        LowCardinality(String),
			total         Decimal(14, 2),
			delta_revenue Decimal(14, 2),
			delta_orders  Int8,
			event_time    DateTime64(3, 'UTC')
		) ENGINE = MergeTree
		ORDER BY (event_time, order_id)`, c.database))
}

func (c *ClickHouse) Insert(ctx context.Context, row Row) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.order_events (
			order_id, user_id, event, status, total, delta_revenue, delta_orders, event_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, c.database)

	return c.conn.Exec(ctx, query,
		row.OrderID,
		row.UserID,
		row.Event,
		row.Status,
		row.Total,
		row.DeltaRevenue,
		row.DeltaOrders,
		row.EventTime,
	)
}

func (c *ClickHouse) RevenueByDay(ctx context.Context, since time.Time) ([]DailyRevenue, error) {
	rows, err := c.conn.Query(ctx, fmt.Sprintf(`
		SELECT toDate(event_time) AS day, sum(delta_revenue), sum(delta_orders)
		FROM %s.order_events
		WHERE event_time >= ?
		GROUP BY day
		ORDER BY day`, c.database), since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query revenue by day: %w", err)
	}
	defer rows.Close()

	out := []DailyRevenue{}
	for rows.Next() {
		var (
			day time.Time
			r   DailyRevenue
		)
		if err := rows.Scan(&day, &r.Revenue, &r.Orders); err != nil {
			return nil, err
		}
		r.Day = day.Format("2006-01-02")
		out = append(out, r)
	}
	return out, rows.Err()
}
