package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/trackbus/internal/broker"
	"github.com/UnknownOlympus/trackbus/internal/models"
)

// PublishMetrics observes outbound messages.
type PublishMetrics interface {
	PublishedInc(kind string)
	PublishErrInc(kind string)
	PublishObserve(kind string, d time.Duration)
}

// StopNotification is the payload published when the rider approaches a stop.
type StopNotification struct {
	RiderID     string             `json:"rider_id"`
	StopID      int                `json:"stop_id"`
	Sequence    int                `json:"sequence"`
	Description string             `json:"description"`
	Coordinates models.Coordinates `json:"coordinates"`
	Timestamp   time.Time          `json:"timestamp"`
}

// AlertMessage is the payload published for user-facing alerts.
type AlertMessage struct {
	RiderID   string    `json:"rider_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSPublisher publishes notifications and alerts for a single rider.
// It implements both Notifier and Alerter.
type NATSPublisher struct {
	conn    broker.Publisher
	prefix  string
	riderID string
	log     *slog.Logger
	metrics PublishMetrics
	now     func() time.Time
}

// NewNATSPublisher creates a publisher writing to "<prefix>.notification.<rider>"
// and "<prefix>.alert.<rider>". m may be nil.
func NewNATSPublisher(
	conn broker.Publisher,
	prefix, riderID string,
	log *slog.Logger,
	m PublishMetrics,
) *NATSPublisher {
	return &NATSPublisher{
		conn:    conn,
		prefix:  prefix,
		riderID: riderID,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// ScheduleNotification publishes a StopNotification for stop.
func (np *NATSPublisher) ScheduleNotification(ctx context.Context, stop models.Stop) error {
	msg := StopNotification{
		RiderID:     np.riderID,
		StopID:      stop.ID,
		Sequence:    stop.Sequence,
		Description: stop.Description,
		Coordinates: stop.Coordinates,
		Timestamp:   np.now(),
	}

	return np.publish(ctx, broker.KindNotification, msg)
}

// ShowAlert publishes an AlertMessage.
func (np *NATSPublisher) ShowAlert(ctx context.Context, title, message string) error {
	msg := AlertMessage{
		RiderID:   np.riderID,
		Title:     title,
		Message:   message,
		Timestamp: np.now(),
	}

	return np.publish(ctx, broker.KindAlert, msg)
}

func (np *NATSPublisher) publish(ctx context.Context, kind string, msg any) error {
	subject := broker.Subject(np.prefix, kind, np.riderID)

	start := time.Now()
	err := broker.PublishJSON(np.conn, subject, msg)
	if np.metrics != nil {
		np.metrics.PublishObserve(kind, time.Since(start))
		if err != nil {
			np.metrics.PublishErrInc(kind)
		} else {
			np.metrics.PublishedInc(kind)
		}
	}
	if err != nil {
		return err
	}

	np.log.DebugContext(ctx, "Message published", "subject", subject)

	return nil
}
