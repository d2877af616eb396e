package payment

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound              = errors.New("checkout session not found")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInvalidShippingMethod = errors.New("shipping method must be standard or express")
	ErrInvalidAddress        = errors.New("a shipping address is required")
	ErrInvalidCoupon         = errors.New("invalid coupon code")
	ErrUnavailableItems      = errors.New("some cart items are unavailable")
	ErrSessionClosed         = errors.New("checkout session is no longer open")
)

// SessionStatus is the internal lifecycle of a checkout session.
type SessionStatus string

const (
	SessionPending SessionStatus = "pending"
	SessionPaid    SessionStatus = "paid"
	SessionExpired SessionStatus = "expired"
)

// ShippingMethod is the delivery speed the customer picked.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

func ParseShippingMethod(s string) (ShippingMethod, error) {
	switch m := ShippingMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ShippingStandard, nil
	case ShippingStandard, ShippingExpress:
		return m, nil
	}
	return "", ErrInvalidShippingMethod
}

// ShippingAddress is the address snapshot stored with the session and order.
type ShippingAddress struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone,omitempty"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country"`
}

func (a ShippingAddress) complete() bool {
	return strings.TrimSpace(a.RecipientName) != "" &&
		strings.TrimSpace(a.Line1) != "" &&
		strings.TrimSpace(a.City) != ""
}

// CheckoutSession is a hosted-checkout attempt with a frozen copy of the cart.
type CheckoutSession struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Status          SessionStatus   `json:"status"`
	ProviderRef     string          `json:"provider_ref,omitempty"`
	CheckoutURL     string          `json:"checkout_url"`
	Items           json.RawMessage `json:"items"`
	ShippingAddress json.RawMessage `json:"shipping_address"`
	ShippingMethod  ShippingMethod  `json:"shipping_method"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CheckoutRequest starts a checkout. Either AddressID (a saved address) or
// Address must be set.
type CheckoutRequest struct {
	AddressID      *uuid.UUID       `json:"address_id,omitempty"`
	Address        *ShippingAddress `json:"address,omitempty"`
	ShippingMethod string           `json:"shipping_method"`
	CouponCode     string           `json:"coupon_code"`
}

// CheckoutResponse carries the hosted page the browser is redirected to.
type CheckoutResponse struct {
	SessionID uuid.UUID       `json:"session_id"`
	URL       string          `json:"url"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
}

// VerifyResult reports the payment state of a session and, once paid, its order.
type VerifyResult struct {
	SessionID uuid.UUID     `json:"session_id"`
	Status    SessionStatus `json:"status"`
	Order     *order.Order  `json:"order,omitempty"`
}
