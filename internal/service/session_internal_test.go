package service

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UnknownOlympus/trackbus/internal/geometry"
	"github.com/UnknownOlympus/trackbus/internal/metrics"
	"github.com/UnknownOlympus/trackbus/internal/mocks"
	"github.com/UnknownOlympus/trackbus/internal/models"
	"github.com/UnknownOlympus/trackbus/internal/notify"
	"github.com/UnknownOlympus/trackbus/internal/route"
	"github.com/UnknownOlympus/trackbus/internal/watchlist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var (
	stopA = models.Stop{ID: 1, Sequence: 1, Description: "A", Coordinates: models.Coordinates{Latitude: 0, Longitude: 0}}
	stopB = models.Stop{ID: 2, Sequence: 2, Description: "B", Coordinates: models.Coordinates{Latitude: 0, Longitude: 1}}
	stopC = models.Stop{ID: 3, Sequence: 3, Description: "C", Coordinates: models.Coordinates{Latitude: 0, Longitude: 2}}
)

type harness struct {
	session  *Session
	metrics  *metrics.Metrics
	stream   *mocks.Stream
	notifier *mocks.Notifier
	alerter  *mocks.Alerter
	fixes    chan models.Coordinates
	stopped  atomic.Int32
	notified chan models.Stop
}

func newHarness(t *testing.T, interval time.Duration, locator geometry.Locator, commands CommandSource) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	rt, err := route.Build([]models.Stop{stopC, stopA, stopB}, route.BySequence)
	require.NoError(t, err)

	h := &harness{
		metrics:  metrics.NewMetrics(prometheus.NewRegistry()),
		stream:   mocks.NewStream(t),
		notifier: mocks.NewNotifier(t),
		alerter:  mocks.NewAlerter(t),
		fixes:    make(chan models.Coordinates),
		notified: make(chan models.Stop, 8),
	}

	sub := geometry.NewSubscription(h.fixes, func() error {
		h.stopped.Add(1)
		return nil
	})
	h.stream.On("Watch", mock.Anything).Return(sub, nil).Once()

	session, err := NewSession(
		logger,
		Config{UpdateInterval: interval, NotificationDistance: 0.5, FetchTimeout: time.Second},
		rt,
		watchlist.New(h.alerter, logger),
		Collaborators{
			Locator:  locator,
			Stream:   h.stream,
			Commands: commands,
			Notifier: h.notifier,
			Alerter:  h.alerter,
			Distance: geometry.Planar,
		},
		h.metrics,
	)
	require.NoError(t, err)
	h.session = session

	return h
}

func (h *harness) expectNotification(stop models.Stop, err error) {
	h.notifier.On("ScheduleNotification", mock.Anything, stop).
		Run(func(mock.Arguments) { h.notified <- stop }).
		Return(err).Once()
}

// start runs the session and returns a func that stops it and waits for Run to return.
func (h *harness) start(t *testing.T) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- h.session.Run(ctx) }()

	return func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(waitFor):
			t.Fatal("session did not stop")
		}
	}
}

func (h *harness) send(t *testing.T, c models.Coordinates) {
	t.Helper()
	select {
	case h.fixes <- c:
	case <-time.After(waitFor):
		t.Fatal("session is not reading fixes")
	}
}

func (h *harness) waitNotified(t *testing.T) models.Stop {
	t.Helper()
	select {
	case stop := <-h.notified:
		return stop
	case <-time.After(waitFor):
		t.Fatal("no notification scheduled")
		return models.Stop{}
	}
}

func (h *harness) stateIs(state string) func() bool {
	return func() bool { return h.session.Status().State == state }
}

func at(lat, lng float64) models.Coordinates {
	return models.Coordinates{Latitude: lat, Longitude: lng}
}

func TestNewSession_InvalidConfig(t *testing.T) {
	rt, err := route.Build([]models.Stop{stopA}, nil)
	require.NoError(t, err)
	deps := Collaborators{
		Stream:   mocks.NewStream(t),
		Notifier: mocks.NewNotifier(t),
		Alerter:  mocks.NewAlerter(t),
		Distance: geometry.Planar,
	}
	valid := Config{UpdateInterval: time.Second, NotificationDistance: 1, FetchTimeout: time.Second}

	tests := []struct {
		name string
		cfg  Config
		deps Collaborators
	}{
		{"zero interval", Config{NotificationDistance: 1, FetchTimeout: time.Second}, deps},
		{"negative distance", Config{UpdateInterval: time.Second, NotificationDistance: -1, FetchTimeout: time.Second}, deps},
		{"zero fetch timeout", Config{UpdateInterval: time.Second, NotificationDistance: 1}, deps},
		{"missing stream", valid, Collaborators{Notifier: deps.Notifier, Alerter: deps.Alerter, Distance: geometry.Planar}},
		{"missing distance", valid, Collaborators{Stream: deps.Stream, Notifier: deps.Notifier, Alerter: deps.Alerter}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSession(slog.Default(), tt.cfg, rt, watchlist.New(deps.Alerter, slog.Default()), tt.deps, nil)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, s)
		})
	}
}

func TestRun_InitialFetchSeeds(t *testing.T) {
	locator := mocks.NewLocator(t)
	locator.On("CurrentPosition", mock.Anything).Return(at(0, 0.1), nil).Once()
	h := newHarness(t, time.Hour, locator, nil)

	stop := h.start(t)
	require.Eventually(t, h.stateIs("tracking"), waitFor, tick)
	stop()

	st := h.session.Status()
	require.NotNil(t, st.CurrentStop)
	assert.Equal(t, stopA, *st.CurrentStop)
	require.NotNil(t, st.NextStop)
	assert.Equal(t, stopB, *st.NextStop)
	require.NotNil(t, st.DistanceToNext)
	assert.InDelta(t, 0.9, *st.DistanceToNext, 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.FixesReceived.WithLabelValues(sourceLocator)), 0)
}

func TestRun_InitialFetchFailure(t *testing.T) {
	locator := mocks.NewLocator(t)
	locator.On("CurrentPosition", mock.Anything).Return(models.Coordinates{}, assert.AnError).Once()
	h := newHarness(t, time.Hour, locator, nil)
	alerted := make(chan struct{})
	h.alerter.On("ShowAlert", mock.Anything, notify.TitleError, notify.MsgPositionFailure).
		Run(func(mock.Arguments) { close(alerted) }).
		Return(assert.AnError).Once()

	stop := h.start(t)
	defer stop()

	select {
	case <-alerted:
	case <-time.After(waitFor):
		t.Fatal("no alert shown")
	}
	assert.Equal(t, "unseeded", h.session.Status().State)

	// a later fix from the stream still seeds the tracker
	h.send(t, at(0, 1.9))
	require.Eventually(t, h.stateIs("terminal"), waitFor, tick)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.PositionFetchErrors), 0)
}

func TestRun_FixesAdvanceAndNotify(t *testing.T) {
	h := newHarness(t, time.Hour, nil, nil)
	h.expectNotification(stopB, nil)
	h.expectNotification(stopC, nil)

	stop := h.start(t)
	defer stop()

	h.send(t, at(0, 0))
	require.Eventually(t, h.stateIs("tracking"), waitFor, tick)

	h.send(t, at(0, 0.9))
	assert.Equal(t, stopB, h.waitNotified(t))

	h.send(t, at(0, 2))
	assert.Equal(t, stopC, h.waitNotified(t))
	require.Eventually(t, h.stateIs("terminal"), waitFor, tick)

	// terminal is absorbing
	h.send(t, at(0, 2))
	h.send(t, at(0, 0))
	assert.Equal(t, "terminal", h.session.Status().State)
	assert.Empty(t, h.notified)
	assert.InDelta(t, 2, testutil.ToFloat64(h.metrics.StopsReached), 0)
}

func TestRun_StandingStillNeverNotifies(t *testing.T) {
	h := newHarness(t, tick, nil, nil)

	stop := h.start(t)
	h.send(t, at(0, 0))
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.metrics.ProximityChecks.WithLabelValues(triggerTick)) >= 3
	}, waitFor, tick)
	stop()

	st := h.session.Status()
	require.NotNil(t, st.CurrentStop)
	assert.Equal(t, stopA, *st.CurrentStop)
	h.notifier.AssertNotCalled(t, "ScheduleNotification", mock.Anything, mock.Anything)
}

func TestRun_NotifierErrorKeepsLoopAlive(t *testing.T) {
	h := newHarness(t, time.Hour, nil, nil)
	h.expectNotification(stopB, assert.AnError)
	h.expectNotification(stopC, nil)

	stop := h.start(t)
	defer stop()

	h.send(t, at(0, 0))
	h.send(t, at(0, 1))
	assert.Equal(t, stopB, h.waitNotified(t))
	h.send(t, at(0, 2))
	assert.Equal(t, stopC, h.waitNotified(t))
}

func TestRun_WatchCommands(t *testing.T) {
	commands := make(chan models.WatchCommand)
	var released atomic.Bool
	source := mocks.NewCommandSource(t)
	source.On("Commands", mock.Anything).
		Return((<-chan models.WatchCommand)(commands), func() error { released.Store(true); return nil }, nil).
		Once()

	h := newHarness(t, time.Hour, nil, source)
	h.alerter.On("ShowAlert", mock.Anything, notify.TitleNotification, "You will be notified when approaching B.").
		Return(nil).Once()

	stop := h.start(t)

	commands <- models.WatchCommand{StopID: 2}
	commands <- models.WatchCommand{StopID: 99}
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]int{2}, h.session.Status().Watched)
	}, waitFor, tick)

	commands <- models.WatchCommand{StopID: 2}
	require.Eventually(t, func() bool { return len(h.session.Status().Watched) == 0 }, waitFor, tick)

	stop()
	assert.True(t, released.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.WatchListToggles.WithLabelValues("add")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.WatchListToggles.WithLabelValues("remove")), 0)
}

func TestRun_AddingWatchedStopChecksProximity(t *testing.T) {
	h := newHarness(t, time.Hour, nil, nil)
	h.alerter.On("ShowAlert", mock.Anything, notify.TitleNotification, mock.Anything).Return(nil).Once()

	stop := h.start(t)
	defer stop()

	h.send(t, at(0, 0))
	require.Eventually(t, h.stateIs("tracking"), waitFor, tick)

	added, err := h.session.Toggle(t.Context(), stopC.ID)
	require.NoError(t, err)
	assert.True(t, added)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.ProximityChecks.WithLabelValues(triggerWatch)), 0)
	h.notifier.AssertNotCalled(t, "ScheduleNotification", mock.Anything, mock.Anything)
}

func TestToggle(t *testing.T) {
	h := newHarness(t, time.Hour, nil, nil)
	h.alerter.On("ShowAlert", mock.Anything, notify.TitleNotification, mock.Anything).Return(nil).Once()

	stop := h.start(t)
	defer stop()

	added, err := h.session.Toggle(t.Context(), stopB.ID)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []int{stopB.ID}, h.session.Status().Watched)

	added, err = h.session.Toggle(t.Context(), stopB.ID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, h.session.Status().Watched)

	_, err = h.session.Toggle(t.Context(), 42)
	require.ErrorIs(t, err, ErrUnknownStop)
}

func TestToggle_NotRunning(t *testing.T) {
	h := newHarness(t, time.Hour, nil, nil)
	h.stream.ExpectedCalls = nil

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := h.session.Toggle(ctx, stopB.ID)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_Teardown(t *testing.T) {
	h := newHarness(t, time.Hour, nil, nil)
	h.alerter.On("ShowAlert", mock.Anything, notify.TitleNotification, mock.Anything).Return(nil).Once()

	stop := h.start(t)
	_, err := h.session.Toggle(t.Context(), stopA.ID)
	require.NoError(t, err)
	stop()

	assert.Equal(t, int32(1), h.stopped.Load())
	assert.Empty(t, h.session.Status().Watched)
	assert.InDelta(t, 0, testutil.ToFloat64(h.metrics.WatchListSize), 0)
}

func TestRun_SubscriptionErrors(t *testing.T) {
	t.Run("position stream", func(t *testing.T) {
		h := newHarness(t, time.Hour, nil, nil)
		h.stream.ExpectedCalls = nil
		h.stream.On("Watch", mock.Anything).Return(nil, assert.AnError).Once()

		err := h.session.Run(t.Context())
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to watch position")
	})

	t.Run("watch commands", func(t *testing.T) {
		source := mocks.NewCommandSource(t)
		source.On("Commands", mock.Anything).Return(nil, nil, assert.AnError).Once()
		h := newHarness(t, time.Hour, nil, source)

		err := h.session.Run(t.Context())
		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, int32(1), h.stopped.Load(), "position stream must be released")
	})
}

func TestRun_ClosedStream(t *testing.T) {
	h := newHarness(t, tick, nil, nil)

	stop := h.start(t)
	close(h.fixes)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.metrics.ProximityChecks.WithLabelValues(triggerTick)) >= 2
	}, waitFor, tick)
	stop()
}

// gatedLocator answers CurrentPosition only once release is closed.
type gatedLocator struct {
	position models.Coordinates
	release  chan struct{}
}

func (gl *gatedLocator) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	select {
	case <-gl.release:
		return gl.position, nil
	case <-ctx.Done():
		return models.Coordinates{}, ctx.Err()
	}
}

func TestRun_LateInitialFetchKeepsStreamPosition(t *testing.T) {
	locator := &gatedLocator{position: at(0, 0), release: make(chan struct{})}
	h := newHarness(t, time.Hour, locator, nil)

	stop := h.start(t)
	defer stop()

	h.send(t, at(0, 0))
	h.send(t, at(0, 0.4))
	require.Eventually(t, func() bool {
		d := h.session.Status().DistanceToNext
		return d != nil && *d < 0.61 && *d > 0.59
	}, waitFor, tick)

	close(locator.release)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.metrics.FixesReceived.WithLabelValues(sourceLocator)) == 1
	}, waitFor, tick)

	st := h.session.Status()
	require.NotNil(t, st.DistanceToNext)
	assert.InDelta(t, 0.6, *st.DistanceToNext, 1e-9)
	require.NotNil(t, st.CurrentStop)
	assert.Equal(t, stopA, *st.CurrentStop)
}

func TestRun_InitialFetchBeforeStreamSeeds(t *testing.T) {
	locator := &gatedLocator{position: at(0, 1.9), release: make(chan struct{})}
	close(locator.release)
	h := newHarness(t, time.Hour, locator, nil)

	stop := h.start(t)
	defer stop()

	require.Eventually(t, h.stateIs("terminal"), waitFor, tick)
}
