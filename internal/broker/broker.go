// Package broker wraps the NATS connection shared by the position stream,
// the watch-list command stream and the outbound notifiers.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Subject kinds used under the configured prefix.
const (
	KindPosition     = "position"
	KindWatch        = "watch"
	KindNotification = "notification"
	KindAlert        = "alert"
)

const defaultBuffer = 16

// Subscriber is the subset of *nats.Conn used to receive messages.
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Publisher is the subset of *nats.Conn used to send messages.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ConnMetrics receives connection state changes.
type ConnMetrics interface {
	SetConnected(connected bool)
}

// Connect opens a NATS connection that keeps reconnecting forever and reports
// its state to the logger and, when not nil, to m.
func Connect(url, name string, log *slog.Logger, m ConnMetrics) (*nats.Conn, error) {
	setConnected := func(connected bool) {
		if m != nil {
			m.SetConnected(connected)
		}
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			setConnected(false)
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			setConnected(true)
			log.Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			setConnected(false)
			log.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	setConnected(conn.IsConnected())

	return conn, nil
}

// Subject builds "<prefix>.<kind>.<rider>".
func Subject(prefix, kind, rider string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, kind, subjectToken(rider))
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}

type listenOptions struct {
	blocking bool
}

// ListenOption configures Listen.
type ListenOption func(*listenOptions)

// WithBlockingSend makes the handler wait for the consumer instead of dropping
// messages when the buffer is full. Use it for messages that must not be lost.
func WithBlockingSend() ListenOption {
	return func(o *listenOptions) {
		o.blocking = true
	}
}

// Listen subscribes to subject and decodes every JSON payload into T.
// Payloads that fail to decode are logged and dropped, and so are messages
// arriving while the consumer is not keeping up, unless WithBlockingSend is
// given. The returned channel is never closed; stop unsubscribes and is also
// called when ctx is done.
func Listen[T any](
	ctx context.Context,
	sub Subscriber,
	subject string,
	log *slog.Logger,
	opts ...ListenOption,
) (<-chan T, func() error, error) {
	var options listenOptions
	for _, opt := range opts {
		opt(&options)
	}

	out := make(chan T, defaultBuffer)
	done := make(chan struct{})

	nsub, err := sub.Subscribe(subject, func(msg *nats.Msg) {
		var value T
		if errDecode := json.Unmarshal(msg.Data, &value); errDecode != nil {
			log.WarnContext(ctx, "Dropping undecodable message", "subject", msg.Subject, "error", errDecode)
			return
		}
		if options.blocking {
			select {
			case out <- value:
			case <-done:
			}
			return
		}
		select {
		case out <- value:
		case <-done:
		default:
			log.WarnContext(ctx, "Consumer is lagging, dropping message", "subject", msg.Subject)
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	var once sync.Once
	var stopErr error
	stop := func() error {
		once.Do(func() {
			close(done)
			if nsub != nil {
				stopErr = nsub.Unsubscribe()
			}
		})
		return stopErr
	}
	context.AfterFunc(ctx, func() { _ = stop() })

	log.DebugContext(ctx, "Subscribed", "subject", subject)

	return out, stop, nil
}

// PublishJSON encodes v and publishes it on subject.
func PublishJSON(pub Publisher, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message for %s: %w", subject, err)
	}
	if err = pub.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}
