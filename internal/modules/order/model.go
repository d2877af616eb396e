package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrNoNextStatus      = errors.New("order has no next status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusChanged     = errors.New("order status was changed concurrently")
	ErrDuplicateCheckout = errors.New("an order already exists for this checkout session")
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
)

// Statuses lists every order status in pipeline order.
func Statuses() []Status {
	return []Status{StatusProcessing, StatusDispatched, StatusDelivered, StatusCancelled, StatusReturned}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusDispatched, StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// Next is the status an advance moves to. Delivered, cancelled and returned
// orders have none.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusProcessing:
		return StatusDispatched, true
	case StatusDispatched:
		return StatusDelivered, true
	case StatusDelivered, StatusCancelled, StatusReturned:
		return "", false
	}
	return "", false
}

// CanReturn reports whether a return may be recorded.
func (s Status) CanReturn() bool { return s == StatusDelivered }

// CanCancel reports whether the order has not yet reached the customer.
func (s Status) CanCancel() bool { return s == StatusProcessing || s == StatusDispatched }

// validTransitions defines the allowed status state machine.
var validTransitions = map[Status][]Status{
	StatusProcessing: {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {},
	StatusReturned:   {},
}

// CanTransition reports whether from → to is an edge of the state machine.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Order is a paid customer order. Items and ShippingAddress are snapshots
// taken at checkout and never change afterwards.
type Order struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	Status            Status          `json:"status"`
	Total             decimal.Decimal `json:"total"`
	Currency          string          `json:"currency"`
	Items             json.RawMessage `json:"items"`
	ShippingAddress   json.RawMessage `json:"shipping_address"`
	ShippingMethod    string          `json:"shipping_method"`
	CouponCode        string          `json:"coupon_code,omitempty"`
	CheckoutSessionID *uuid.UUID      `json:"checkout_session_id,omitempty"`
	TrackingCode      string          `json:"tracking_code,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Item is one line of the items snapshot.
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// DecodeItems parses an items snapshot. Empty input yields no items.
func DecodeItems(raw json.RawMessage) ([]Item, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	return items, nil
}

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Event kinds published to the order-event queue.
const (
	EventCreated       = "order.created"
	EventStatusChanged = "order.status_changed"
)

// Event is the message published whenever an order is created or moves.
type Event struct {
	OrderID    uuid.UUID       `json:"order_id"`
	UserID     uuid.UUID       `json:"user_id"`
	Event      string          `json:"event"`
	Status     Status          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// AdvanceRequest is the admin payload for moving an order forward.
type AdvanceRequest struct {
	TrackingCode string `json:"tracking_code"`
}
