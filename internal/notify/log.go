package notify

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/trackbus/internal/models"
)

// LogPublisher writes notifications and alerts to the logger instead of the broker.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// ScheduleNotification logs the approached stop.
func (lp *LogPublisher) ScheduleNotification(ctx context.Context, stop models.Stop) error {
	lp.log.InfoContext(ctx, "Approaching stop",
		"stop", stop.ID, "sequence", stop.Sequence, "description", stop.Description)
	return nil
}

// ShowAlert logs the alert.
func (lp *LogPublisher) ShowAlert(ctx context.Context, title, message string) error {
	lp.log.WarnContext(ctx, "Alert", "title", title, "message", message)
	return nil
}
