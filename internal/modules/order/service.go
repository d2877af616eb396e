package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/broker"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service defines the order pipeline business logic.
type Service interface {
	// Create persists a new processing order. Used by payment verification.
	Create(ctx context.Context, o *Order) (*Order, error)
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	// GetForCustomer hides orders owned by other users behind ErrNotFound.
	GetForCustomer(ctx context.Context, userID, id uuid.UUID) (*Order, error)
	GetByCheckoutSession(ctx context.Context, sessionID uuid.UUID) (*Order, error)
	ListForCustomer(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	ListAll(ctx context.Context, f ListFilter) ([]*Order, error)

	// Advance moves the order to its next status, optionally recording a
	// tracking code, and notifies the customer.
	Advance(ctx context.Context, id uuid.UUID, trackingCode string) (*Order, error)
	// MarkReturned records a return on a delivered order.
	MarkReturned(ctx context.Context, id uuid.UUID) (*Order, error)
	// Cancel cancels an order that has not been delivered.
	Cancel(ctx context.Context, id uuid.UUID) (*Order, error)
}

// Notifier delivers a customer-facing notification.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message string) error
}

type service struct {
	repo     Repository
	notifier Notifier
	events   broker.Publisher
	queue    string
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewService creates a new order service. Events go to eventQueue on events.
func NewService(repo Repository, notifier Notifier, events broker.Publisher, eventQueue string, log logrus.FieldLogger) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		events:   events,
		queue:    eventQueue,
		log:      log.WithField("module", "order"),
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, o *Order) (*Order, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.Status = StatusProcessing
	if o.ShippingMethod == "" {
		o.ShippingMethod = "standard"
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o, EventCreated)
	return o, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetForCustomer(ctx context.Context, userID, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *service) GetByCheckoutSession(ctx context.Context, sessionID uuid.UUID) (*Order, error) {
	return s.repo.GetByCheckoutSession(ctx, sessionID)
}

func (s *service) ListForCustomer(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context, f ListFilter) ([]*Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	return s.repo.List(ctx, f)
}

func (s *service) Advance(ctx context.Context, id uuid.UUID, trackingCode string) (*Order, error) {
	return s.transition(ctx, id, strings.TrimSpace(trackingCode), func(cur Status) (Status, error) {
		next, ok := cur.Next()
		if !ok {
			return "", fmt.Errorf("%w: order is %s", ErrNoNextStatus, cur)
		}
		return next, nil
	})
}

func (s *service) MarkReturned(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.transition(ctx, id, "", func(cur Status) (Status, error) {
		if !cur.CanReturn() {
			return "", fmt.Errorf("%w: only delivered orders can be returned (current: %s)", ErrInvalidTransition, cur)
		}
		return StatusReturned, nil
	})
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.transition(ctx, id, "", func(cur Status) (Status, error) {
		if !cur.CanCancel() {
			return "", fmt.Errorf("%w: only processing or dispatched orders can be cancelled (current: %s)", ErrInvalidTransition, cur)
		}
		return StatusCancelled, nil
	})
}

// transition persists the status chosen by next, then notifies the customer
// and publishes an event. Only the status write can fail the call.
func (s *service) transition(ctx context.Context, id uuid.UUID, trackingCode string, next func(Status) (Status, error)) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	to, err := next(o.Status)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, to)
	}

	var tracking *string
	if trackingCode != "" {
		tracking = &trackingCode
	}
	if err := s.repo.UpdateStatus(ctx, id, o.Status, to, tracking); err != nil {
		return nil, err
	}

	from := o.Status
	o.Status = to
	o.UpdatedAt = s.now()
	if tracking != nil {
		o.TrackingCode = trackingCode
	}

	s.log.WithFields(logrus.Fields{"order_id": o.ID, "from": from, "to": to}).Info("order status changed")
	s.notify(ctx, o)
	s.publish(ctx, o, EventStatusChanged)
	return o, nil
}

func (s *service) notify(ctx context.Context, o *Order) {
	title, message := statusMessage(o)
	if err := s.notifier.Notify(ctx, o.UserID, "order_status", title, message); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("order notification failed")
	}
}

func (s *service) publish(ctx context.Context, o *Order, kind string) {
	ev := Event{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Event:      kind,
		Status:     o.Status,
		Total:      o.Total,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, s.queue, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"order_id": o.ID, "event": kind}).Warn("order event publish failed")
	}
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}

func statusMessage(o *Order) (string, string) {
	ref := shortID(o.ID)
	switch o.Status {
	case StatusDispatched:
		msg := fmt.Sprintf("Your order #%s is on its way.", ref)
		if o.TrackingCode != "" {
			msg += fmt.Sprintf(" Tracking code: %s.", o.TrackingCode)
		}
		return "Order dispatched", msg
	case StatusDelivered:
		return "Order delivered", fmt.Sprintf("Your order #%s has been delivered.", ref)
	case StatusReturned:
		return "Return processed", fmt.Sprintf("The return for order #%s has been recorded.", ref)
	case StatusCancelled:
		return "Order cancelled", fmt.Sprintf("Your order #%s has been cancelled.", ref)
	case StatusProcessing:
		return "Order received", fmt.Sprintf("Your order #%s is being prepared.", ref)
	}
	return "Order updated", fmt.Sprintf("Your order #%s is now %s.", ref, o.Status)
}
