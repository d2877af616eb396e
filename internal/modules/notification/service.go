package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/broker"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultListLimit = 50

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Notification, error)
	// Notify stores a notification and queues it for out-of-band delivery.
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message string) error
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo      Repository
	publisher broker.Publisher
	queue     string
	log       logrus.FieldLogger
}

// NewService creates a notification service publishing deliveries to queue.
func NewService(repo Repository, publisher broker.Publisher, queue string, log logrus.FieldLogger) Service {
	return &service{repo: repo, publisher: publisher, queue: queue, log: log.WithField("module", "notification")}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Notification, error) {
	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: title and message are required", ErrInvalidInput)
	}
	kind := req.Kind
	if kind == "" {
		kind = "general"
	}

	n := &Notification{
		ID:      uuid.New(),
		UserID:  req.UserID,
		Kind:    kind,
		Title:   strings.TrimSpace(req.Title),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, s.queue, n); err != nil {
		s.log.WithError(err).WithField("notification_id", n.ID).Warn("notification delivery not queued")
	}
	return n, nil
}

func (s *service) Notify(ctx context.Context, userID uuid.UUID, kind, title, message string) error {
	_, err := s.Create(ctx, CreateRequest{UserID: userID, Kind: kind, Title: title, Message: message})
	return err
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*Notification, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit)
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// DeliveryHandler consumes the notification queue. Delivery channels beyond
// the in-app inbox are not configured, so each message is logged as sent.
func DeliveryHandler(log logrus.FieldLogger) broker.Handler {
	log = log.WithField("consumer", "notification")
	return func(ctx context.Context, body []byte) error {
		var n Notification
		if err := json.Unmarshal(body, &n); err != nil {
			return broker.Permanent(fmt.Errorf("decode notification: %w", err))
		}
		if n.UserID == uuid.Nil {
			return broker.Permanent(fmt.Errorf("notification %s has no recipient", n.ID))
		}
		log.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"kind":            n.Kind,
		}).Info("notification delivered")
		return nil
	}
}
