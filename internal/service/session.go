package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/trackbus/internal/geometry"
	"github.com/UnknownOlympus/trackbus/internal/metrics"
	"github.com/UnknownOlympus/trackbus/internal/models"
	"github.com/UnknownOlympus/trackbus/internal/notify"
	"github.com/UnknownOlympus/trackbus/internal/route"
	"github.com/UnknownOlympus/trackbus/internal/tracker"
	"github.com/UnknownOlympus/trackbus/internal/watchlist"
)

// Check triggers, used as metric labels.
const (
	triggerTick  = "tick"
	triggerFix   = "fix"
	triggerWatch = "watch"

	sourceStream  = "stream"
	sourceLocator = "locator"
)

var (
	ErrUnknownStop   = errors.New("stop is not on the route")
	ErrInvalidConfig = errors.New("invalid session configuration")
)

// Config holds the tunables of a tracking session.
type Config struct {
	UpdateInterval       time.Duration // period of the proximity check timer
	NotificationDistance float64       // a stop is reached within this distance
	FetchTimeout         time.Duration // bound of the initial position fetch
}

// Collaborators are the external services a session talks to.
// Locator and Commands may be nil.
type Collaborators struct {
	Locator  geometry.Locator
	Stream   geometry.Stream
	Commands CommandSource
	Notifier notify.Notifier
	Alerter  notify.Alerter
	Distance geometry.DistanceFunc
}

// Session drives a ProximityTracker from a timer, a position stream and
// watch-list commands. All tracker and watch-list mutations happen on the
// goroutine running Run.
type Session struct {
	log       *slog.Logger
	cfg       Config
	route     *route.Route
	tracker   *tracker.ProximityTracker
	watchlist *watchlist.WatchList
	deps      Collaborators
	metrics   *metrics.Metrics
	toggles   chan toggleRequest

	// set by Run once the stream delivered a fix
	streamSeen bool
}

type toggleRequest struct {
	stop  models.Stop
	reply chan bool
}

type fetchResult struct {
	position models.Coordinates
	err      error
}

// Status is a point-in-time view of a session.
type Status struct {
	State          string       `json:"state"`
	CurrentStop    *models.Stop `json:"current_stop,omitempty"`
	NextStop       *models.Stop `json:"next_stop,omitempty"`
	DistanceToNext *float64     `json:"distance_to_next,omitempty"`
	Watched        []int        `json:"watched"`
}

// NewSession creates a session over rt. The tracker is created unseeded with
// cfg.NotificationDistance as its threshold.
func NewSession(
	log *slog.Logger,
	cfg Config,
	rt *route.Route,
	wl *watchlist.WatchList,
	deps Collaborators,
	m *metrics.Metrics,
) (*Session, error) {
	switch {
	case cfg.UpdateInterval <= 0:
		return nil, fmt.Errorf("%w: update interval must be positive", ErrInvalidConfig)
	case cfg.NotificationDistance < 0:
		return nil, fmt.Errorf("%w: notification distance must not be negative", ErrInvalidConfig)
	case cfg.FetchTimeout <= 0:
		return nil, fmt.Errorf("%w: fetch timeout must be positive", ErrInvalidConfig)
	case deps.Stream == nil || deps.Notifier == nil || deps.Alerter == nil || deps.Distance == nil:
		return nil, fmt.Errorf("%w: stream, notifier, alerter and distance are required", ErrInvalidConfig)
	}

	return &Session{
		log:       log,
		cfg:       cfg,
		route:     rt,
		tracker:   tracker.New(rt, cfg.NotificationDistance),
		watchlist: wl,
		deps:      deps,
		metrics:   m,
		toggles:   make(chan toggleRequest),
	}, nil
}

// Run starts the session and blocks until ctx is done. It returns an error only
// when a subscription cannot be established. On return the timer and every
// subscription are released and the watch-list is cleared.
func (s *Session) Run(ctx context.Context) error {
	fetched := s.fetchInitialPosition(ctx)

	sub, err := s.deps.Stream.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch position: %w", err)
	}
	defer s.release(ctx, "position stream", sub.Stop)

	var commands <-chan models.WatchCommand
	if s.deps.Commands != nil {
		var stop func() error
		commands, stop, err = s.deps.Commands.Commands(ctx)
		if err != nil {
			return fmt.Errorf("failed to listen for watch commands: %w", err)
		}
		defer s.release(ctx, "watch commands", stop)
	}

	ticker := time.NewTicker(s.cfg.UpdateInterval)
	defer ticker.Stop()

	s.metrics.CurrentStopIndex.Set(float64(s.tracker.CurrentIndex()))
	s.log.InfoContext(ctx, "Tracking session started", "stops", s.route.Len(), "interval", s.cfg.UpdateInterval)

	fixes := sub.C
	for {
		select {
		case <-ctx.Done():
			s.watchlist.Clear()
			s.metrics.WatchListSize.Set(0)
			s.log.InfoContext(ctx, "Tracking session stopped.")
			return nil
		case <-ticker.C:
			s.check(ctx, triggerTick)
		case c, ok := <-fixes:
			if !ok {
				s.log.WarnContext(ctx, "Position stream closed")
				fixes = nil
				continue
			}
			s.streamSeen = true
			s.handleFix(ctx, c, sourceStream)
		case res := <-fetched:
			fetched = nil
			s.handleFetch(ctx, res)
		case cmd := <-commands:
			stop, ok := s.stopByID(cmd.StopID)
			if !ok {
				s.log.WarnContext(ctx, "Ignoring watch command for unknown stop", "stop", cmd.StopID)
				continue
			}
			s.toggle(ctx, stop)
		case req := <-s.toggles:
			req.reply <- s.toggle(ctx, req.stop)
		}
	}
}

// Toggle adds the stop to the watch-list, or removes it when already watched,
// through the running session loop. It blocks until the loop handles the
// request or ctx is done, and reports whether the stop was added.
func (s *Session) Toggle(ctx context.Context, stopID int) (bool, error) {
	stop, ok := s.stopByID(stopID)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownStop, stopID)
	}

	req := toggleRequest{stop: stop, reply: make(chan bool, 1)}
	select {
	case s.toggles <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case added := <-req.reply:
		return added, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Status reports the tracker state and the watch-list. It is safe to call
// while Run is active.
func (s *Session) Status() Status {
	st := Status{
		State:   s.tracker.State().String(),
		Watched: s.watchlist.IDs(),
	}
	if stop, ok := s.tracker.CurrentStop(); ok {
		st.CurrentStop = &stop
	}
	if stop, ok := s.tracker.NextStop(); ok {
		st.NextStop = &stop
	}
	if d, ok := s.tracker.DistanceToNext(s.deps.Distance); ok {
		st.DistanceToNext = &d
	}

	return st
}

func (s *Session) fetchInitialPosition(ctx context.Context) <-chan fetchResult {
	if s.deps.Locator == nil {
		return nil
	}

	out := make(chan fetchResult, 1)
	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()

		position, err := s.deps.Locator.CurrentPosition(fetchCtx)
		out <- fetchResult{position: position, err: err}
	}()

	return out
}

func (s *Session) handleFetch(ctx context.Context, res fetchResult) {
	if res.err != nil {
		if ctx.Err() != nil {
			return
		}
		s.metrics.PositionFetchErrors.Inc()
		s.log.ErrorContext(ctx, "Failed to fetch initial position", "error", res.err)
		if err := s.deps.Alerter.ShowAlert(ctx, notify.TitleError, notify.MsgPositionFailure); err != nil {
			s.log.ErrorContext(ctx, "Failed to show alert", "error", err)
		}
		return
	}

	if s.streamSeen {
		s.metrics.FixesReceived.WithLabelValues(sourceLocator).Inc()
		s.log.DebugContext(ctx, "Discarding initial position, the stream is already ahead")
		return
	}

	s.handleFix(ctx, res.position, sourceLocator)
}

func (s *Session) handleFix(ctx context.Context, c models.Coordinates, source string) {
	s.metrics.FixesReceived.WithLabelValues(source).Inc()
	s.tracker.Observe(c)

	seeded, err := s.tracker.Seed(c, s.deps.Distance)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to seed tracker", "error", err)
		return
	}
	if seeded {
		s.metrics.CurrentStopIndex.Set(float64(s.tracker.CurrentIndex()))
		current, _ := s.tracker.CurrentStop()
		s.log.InfoContext(ctx, "Tracker seeded", "stop", current.ID, "description", current.Description)
	}

	s.check(ctx, triggerFix)
}

func (s *Session) check(ctx context.Context, trigger string) {
	s.metrics.ProximityChecks.WithLabelValues(trigger).Inc()

	reached, ok := s.tracker.CheckProximity(s.deps.Distance)
	if !ok {
		return
	}

	s.metrics.StopsReached.Inc()
	s.metrics.CurrentStopIndex.Set(float64(reached.Index))
	s.log.InfoContext(ctx, "Stop reached",
		"stop", reached.Stop.ID,
		"description", reached.Stop.Description,
		"distance", reached.Distance,
		"state", s.tracker.State().String(),
	)

	if err := s.deps.Notifier.ScheduleNotification(ctx, reached.Stop); err != nil {
		s.log.ErrorContext(ctx, "Failed to schedule notification", "stop", reached.Stop.ID, "error", err)
	}
}

func (s *Session) toggle(ctx context.Context, stop models.Stop) bool {
	added := s.watchlist.Toggle(ctx, stop)
	s.metrics.WatchListSize.Set(float64(s.watchlist.Len()))

	if !added {
		s.metrics.WatchListToggles.WithLabelValues("remove").Inc()
		s.log.InfoContext(ctx, "Stop removed from watch-list", "stop", stop.ID)
		return false
	}

	s.metrics.WatchListToggles.WithLabelValues("add").Inc()
	s.check(ctx, triggerWatch)

	return true
}

func (s *Session) stopByID(id int) (models.Stop, bool) {
	idx, ok := s.route.IndexOf(id)
	if !ok {
		return models.Stop{}, false
	}

	stop, err := s.route.StopAt(idx)
	return stop, err == nil
}

func (s *Session) release(ctx context.Context, what string, stop func() error) {
	if err := stop(); err != nil {
		s.log.WarnContext(ctx, "Failed to release subscription", "subscription", what, "error", err)
	}
}
