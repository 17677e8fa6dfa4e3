package service

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/trackbus/internal/broker"
	"github.com/UnknownOlympus/trackbus/internal/models"
)

// CommandSource delivers watch-list commands until stop is called or ctx is done.
type CommandSource interface {
	Commands(ctx context.Context) (<-chan models.WatchCommand, func() error, error)
}

// NATSCommands reads watch commands from "<prefix>.watch.<rider>". Toggles are
// not idempotent, so commands are never dropped.
type NATSCommands struct {
	conn    broker.Subscriber
	subject string
	log     *slog.Logger
}

func NewNATSCommands(conn broker.Subscriber, subject string, log *slog.Logger) *NATSCommands {
	return &NATSCommands{conn: conn, subject: subject, log: log}
}

func (nc *NATSCommands) Commands(ctx context.Context) (<-chan models.WatchCommand, func() error, error) {
	return broker.Listen[models.WatchCommand](ctx, nc.conn, nc.subject, nc.log, broker.WithBlockingSend())
}
