// Package notify delivers user-facing notifications and alerts.
package notify

import (
	"context"

	"github.com/UnknownOlympus/trackbus/internal/models"
)

// Notifier schedules a notification for a stop the rider is approaching.
type Notifier interface {
	ScheduleNotification(ctx context.Context, stop models.Stop) error
}

// Alerter shows a short message to the user.
type Alerter interface {
	ShowAlert(ctx context.Context, title, message string) error
}

// Alert titles and messages shown to the rider.
const (
	TitleError        = "Error"
	TitleNotification = "Notification"

	MsgPositionFailure = "Could not determine your position. Tracking starts with the next GPS fix."
	MsgWatchAdded      = "You will be notified when approaching %s."
)
