package analytics

import (
	"context"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row is one order event as stored in the order_events fact table.
// DeltaRevenue and DeltaOrders are signed so that summing them over any
// window yields net revenue: creation adds the total, a cancellation or
// return takes it back out.
type Row struct {
	OrderID      uuid.UUID
	UserID       uuid.UUID
	Event        string
	Status       string
	Total        decimal.Decimal
	DeltaRevenue decimal.Decimal
	DeltaOrders  int8
	EventTime    time.Time
}

// DailyRevenue is net revenue for one UTC calendar day.
type DailyRevenue struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

// Store persists and queries order facts.
type Store interface {
	Insert(ctx context.Context, row Row) error
	RevenueByDay(ctx context.Context, since time.Time) ([]DailyRevenue, error)
}

// RowFromEvent converts a published order event into a fact row.
func RowFromEvent(ev order.Event) Row {
	row := Row{
		OrderID:      ev.OrderID,
		UserID:       ev.UserID,
		Event:        ev.Event,
		Status:       string(ev.Status),
		Total:        ev.Total,
		DeltaRevenue: decimal.Zero,
		EventTime:    ev.OccurredAt.UTC(),
	}
	switch {
	case ev.Event == order.EventCreated:
		row.DeltaRevenue = ev.Total
		row.DeltaOrders = 1
	case ev.Event == order.EventStatusChanged &&
		(ev.Status == order.StatusCancelled || ev.Status == order.StatusReturned):
		row.DeltaRevenue = ev.Total.Neg()
		row.DeltaOrders = -1
	}
	if row.EventTime.IsZero() {
		row.EventTime = time.Now().UTC()
	}
	return row
}
