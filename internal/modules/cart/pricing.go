package cart

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvalidCouponMessage is reported in Quote.CouponError for unknown codes.
const InvalidCouponMessage = "invalid coupon code"

// coupons maps a code to its percentage discount on the subtotal.
var coupons = map[string]int64{
	"WELCOME10": 10,
	"KBEAUTY15": 15,
	"GLOW20":    20,
}

// CouponPercent looks a code up case-insensitively.
func CouponPercent(code string) (int64, bool) {
	pct, ok := coupons[strings.ToUpper(strings.TrimSpace(code))]
	return pct, ok
}

// Pricing holds the shop-wide shipping rules.
type Pricing struct {
	Currency              string
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// QuoteLine is one priced cart line.
type QuoteLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Quote is the full price breakdown shown on the cart and checkout pages.
type Quote struct {
	Lines       []QuoteLine     `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	Coupon      string          `json:"coupon,omitempty"`
	CouponError string          `json:"coupon_error,omitempty"`
}

// Quote prices lines. An empty coupon code applies no discount; an unknown
// one applies no discount and sets CouponError.
func (p Pricing) Quote(lines []*Line, couponCode string) Quote {
	q := Quote{
		Lines:    make([]QuoteLine, 0, len(lines)),
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Currency: p.Currency,
	}
	for _, l := range lines {
		total := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		q.Lines = append(q.Lines, QuoteLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: total,
		})
		q.Subtotal = q.Subtotal.Add(total)
	}

	q.ShippingFee = p.ShippingFee
	if q.Subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		q.ShippingFee = decimal.Zero
	}

	if code := strings.TrimSpace(couponCode); code != "" {
		if pct, ok := CouponPercent(code); ok {
			q.Coupon = strings.ToUpper(code)
			q.Discount = q.Subtotal.Mul(decimal.NewFromInt(pct)).Div(decimal.NewFromInt(100)).Round(2)
		} else {
			q.CouponError = InvalidCouponMessage
		}
	}

	q.Total = q.Subtotal.Add(q.ShippingFee).Sub(q.Discount)
	return q
}
