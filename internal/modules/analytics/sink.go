package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/broker"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrInvalidEvent = errors.New("invalid order event")

// Sink writes order events consumed from the broker into a Store.
type Sink struct {
	store Store
	log   logrus.FieldLogger
}

func NewSink(store Store, log logrus.FieldLogger) *Sink {
	return &Sink{store: store, log: log.WithField("module", "analytics")}
}

// Handler decodes an order.Event. Malformed events are dropped; insert
// failures are retried by the broker.
func (s *Sink) Handler() broker.Handler {
	return func(ctx context.Context, body []byte) error {
		var ev order.Event
		if err := json.Unmarshal(body, &ev); err != nil {
			return broker.Permanent(fmt.Errorf("%w: %v", ErrInvalidEvent, err))
		}
		if ev.OrderID == uuid.Nil || ev.Event == "" {
			return broker.Permanent(ErrInvalidEvent)
		}

		row := RowFromEvent(ev)
		if err := s.store.Insert(ctx, row); err != nil {
			return fmt.Errorf("insert order event: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"order_id": ev.OrderID,
			"event":    ev.Event,
			"status":   ev.Status,
		}).Debug("order event recorded")
		return nil
	}
}
