package geometry

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/trackbus/internal/broker"
	"github.com/UnknownOlympus/trackbus/internal/models"
)

// NATSStream streams the rider's position fixes published on a NATS subject
// as JSON objects of the form {"lat": 43.26, "lng": -2.93}.
type NATSStream struct {
	conn    broker.Subscriber
	subject string
	log     *slog.Logger
}

// NewNATSStream creates a stream reading fixes from subject.
func NewNATSStream(conn broker.Subscriber, subject string, log *slog.Logger) *NATSStream {
	return &NATSStream{conn: conn, subject: subject, log: log}
}

// Watch subscribes to the position subject.
func (ns *NATSStream) Watch(ctx context.Context) (*Subscription, error) {
	fixes, stop, err := broker.Listen[models.Coordinates](ctx, ns.conn, ns.subject, ns.log)
	if err != nil {
		return nil, err
	}
	return NewSubscription(fixes, stop), nil
}
