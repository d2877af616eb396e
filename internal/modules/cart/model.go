package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

var (
	ErrNotFound           = errors.New("cart item not found")
	ErrQuantityOutOfRange = errors.New("quantity must be between 1 and 99")
	ErrProductUnavailable = errors.New("product is unavailable")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrEmptyCart          = errors.New("cart is empty")
)

// Item is a stored cart row.
type Item struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Line is a cart row joined with the product it points at.
type Line struct {
	ItemID        uuid.UUID       `json:"item_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
}

// Cart is the customer's cart together with its priced quote.
type Cart struct {
	Lines []*Line `json:"lines"`
	Quote Quote   `json:"quote"`
}
