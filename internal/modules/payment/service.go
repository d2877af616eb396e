package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/cart"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/user"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service runs the hosted checkout flow.
type Service interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, req *CheckoutRequest) (*CheckoutResponse, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*CheckoutSession, error)
	VerifyPayment(ctx context.Context, userID, sessionID uuid.UUID) (*VerifyResult, error)
}

// Carts is the slice of the cart service checkout needs.
type Carts interface {
	Get(ctx context.Context, userID uuid.UUID, couponCode string) (*cart.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// AddressBook resolves a customer's saved address.
type AddressBook interface {
	GetAddress(ctx context.Context, userID, id uuid.UUID) (*user.Address, error)
}

// Orders is the slice of the order service checkout needs.
type Orders interface {
	Create(ctx context.Context, o *order.Order) (*order.Order, error)
	GetByCheckoutSession(ctx context.Context, sessionID uuid.UUID) (*order.Order, error)
}

// URLs are the pages the hosted checkout sends the browser back to.
type URLs struct {
	Success string
	Cancel  string
}

type service struct {
	repo      Repository
	carts     Carts
	addresses AddressBook
	orders    Orders
	gateway   Gateway
	urls      URLs
	log       logrus.FieldLogger
}

func NewService(repo Repository, carts Carts, addresses AddressBook, orders Orders, gateway Gateway, urls URLs, log logrus.FieldLogger) Service {
	return &service{
		repo:      repo,
		carts:     carts,
		addresses: addresses,
		orders:    orders,
		gateway:   gateway,
		urls:      urls,
		log:       log.WithField("module", "payment"),
	}
}

func (s *service) CreateCheckout(ctx context.Context, userID uuid.UUID, req *CheckoutRequest) (*CheckoutResponse, error) {
	method, err := ParseShippingMethod(req.ShippingMethod)
	if err != nil {
		return nil, err
	}
	addr, err := s.resolveAddress(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, userID, req.CouponCode)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if c.Quote.CouponError != "" {
		return nil, ErrInvalidCoupon
	}
	var unavailable []string
	for _, l := range c.Lines {
		if !l.IsActive || l.Quantity > l.StockQuantity {
			unavailable = append(unavailable, l.Name)
		}
	}
	if len(unavailable) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnavailableItems, strings.Join(unavailable, ", "))
	}

	items := make([]order.Item, 0, len(c.Quote.Lines))
	for _, l := range c.Quote.Lines {
		items = append(items, order.Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	addrJSON, err := json.Marshal(addr)
	if err != nil {
		return nil, err
	}

	sess := &CheckoutSession{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          SessionPending,
		Items:           itemsJSON,
		ShippingAddress: addrJSON,
		ShippingMethod:  method,
		CouponCode:      c.Quote.Coupon,
		Subtotal:        c.Quote.Subtotal,
		ShippingFee:     c.Quote.ShippingFee,
		Discount:        c.Quote.Discount,
		Total:           c.Quote.Total,
		Currency:        c.Quote.Currency,
	}

	gs, err := s.gateway.CreateSession(ctx, &GatewayRequest{
		SessionID:  sess.ID,
		Amount:     sess.Total,
		Currency:   sess.Currency,
		SuccessURL: s.urls.Success + "?session_id=" + sess.ID.String(),
		CancelURL:  s.urls.Cancel,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway create session: %w", err)
	}
	sess.ProviderRef = gs.ProviderRef
	sess.CheckoutURL = gs.URL

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"user_id":    userID,
		"total":      sess.Total.String(),
	}).Info("checkout session created")

	return &CheckoutResponse{SessionID: sess.ID, URL: sess.CheckoutURL, Total: sess.Total, Currency: sess.Currency}, nil
}

func (s *service) resolveAddress(ctx context.Context, userID uuid.UUID, req *CheckoutRequest) (*ShippingAddress, error) {
	if req.AddressID != nil {
		a, err := s.addresses.GetAddress(ctx, userID, *req.AddressID)
		if errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("%w: saved address not found", ErrInvalidAddress)
		}
		if err != nil {
			return nil, err
		}
		return &ShippingAddress{
			RecipientName: a.RecipientName,
			Phone:         a.Phone,
			Line1:         a.Line1,
			Line2:         a.Line2,
			City:          a.City,
			PostalCode:    a.PostalCode,
			Country:       a.Country,
		}, nil
	}
	if req.Address == nil || !req.Address.complete() {
		return nil, ErrInvalidAddress
	}
	return req.Address, nil
}

func (s *service) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*CheckoutSession, error) {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotFound
	}
	return sess, nil
}

// VerifyPayment is safe to call repeatedly: once a session is paid every
// later call returns the same order.
func (s *service) VerifyPayment(ctx context.Context, userID, sessionID uuid.UUID) (*VerifyResult, error) {
	sess, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	res := &VerifyResult{SessionID: sess.ID, Status: sess.Status}

	switch sess.Status {
	case SessionPaid:
		o, err := s.orders.GetByCheckoutSession(ctx, sess.ID)
		if err != nil {
			return nil, fmt.Errorf("load order for paid session: %w", err)
		}
		res.Order = o
		return res, nil
	case SessionExpired:
		return res, nil
	}

	gs, err := s.gateway.Retrieve(ctx, sess.ProviderRef)
	if err != nil {
		return nil, fmt.Errorf("gateway retrieve: %w", err)
	}
	res.Status = NormaliseStatus(gs.ProviderStatus)

	switch res.Status {
	case SessionPending:
		return res, nil
	case SessionExpired:
		if err := s.repo.SetStatus(ctx, sess.ID, SessionExpired); err != nil {
			return nil, err
		}
		return res, nil
	}

	o, err := s.placeOrder(ctx, sess)
	if err != nil {
		return nil, err
	}
	res.Order = o
	return res, nil
}

func (s *service) placeOrder(ctx context.Context, sess *CheckoutSession) (*order.Order, error) {
	sid := sess.ID
	o, err := s.orders.Create(ctx, &order.Order{
		UserID:            sess.UserID,
		Total:             sess.Total,
		Currency:          sess.Currency,
		Items:             sess.Items,
		ShippingAddress:   sess.ShippingAddress,
		ShippingMethod:    string(sess.ShippingMethod),
		CouponCode:        sess.CouponCode,
		CheckoutSessionID: &sid,
	})
	if errors.Is(err, order.ErrDuplicateCheckout) {
		// A concurrent verify already placed it.
		o, err = s.orders.GetByCheckoutSession(ctx, sess.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.repo.MarkPaid(ctx, sess.ID, o.ID); err != nil && !errors.Is(err, ErrSessionClosed) {
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{"session_id": sess.ID, "order_id": o.ID})
	if err := s.carts.Clear(ctx, sess.UserID); err != nil {
		entry.WithError(err).Warn("failed to clear cart after payment")
	}
	entry.Info("payment verified, order placed")
	return o, nil
}
