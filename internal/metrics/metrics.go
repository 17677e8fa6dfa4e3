package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FixesReceived       *prometheus.CounterVec
	ProximityChecks     *prometheus.CounterVec
	StopsReached        prometheus.Counter
	Notifications       *prometheus.CounterVec
	PositionFetchErrors prometheus.Counter
	WatchListToggles    *prometheus.CounterVec
	WatchListSize       prometheus.Gauge
	CurrentStopIndex    prometheus.Gauge
	NATSConnected       prometheus.Gauge
	PublishSeconds      *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FixesReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trackbus_position_fixes_total",
			Help: "Total number of position fixes received.",
		}, []string{"source"}),
		ProximityChecks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trackbus_proximity_checks_total",
			Help: "Total number of proximity checks performed.",
		}, []string{"trigger"}),
		StopsReached: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "trackbus_stops_reached_total",
			Help: "Total number of stops the rider has reached.",
		}),
		Notifications: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trackbus_messages_published_total",
			Help: "Total number of outbound notifications and alerts.",
		}, []string{"kind", "status"}),
		PositionFetchErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "trackbus_position_fetch_errors_total",
			Help: "Total number of failed one-shot position fetches.",
		}),
		WatchListToggles: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trackbus_watchlist_toggles_total",
			Help: "Total number of watch-list toggles.",
		}, []string{"action"}),
		WatchListSize: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "trackbus_watchlist_size",
			Help: "Current number of watched stops.",
		}),
		CurrentStopIndex: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "trackbus_current_stop_index",
			Help: "Route index of the current stop, -1 before the first fix.",
		}),
		NATSConnected: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "trackbus_nats_connected",
			Help: "1 when the NATS connection is up.",
		}),
		PublishSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trackbus_publish_duration_seconds",
			Help:    "Duration of outbound publishes.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// PublishedInc counts a successful publish of the given kind.
func (m *Metrics) PublishedInc(kind string) {
	m.Notifications.WithLabelValues(kind, "success").Inc()
}

// PublishErrInc counts a failed publish of the given kind.
func (m *Metrics) PublishErrInc(kind string) {
	m.Notifications.WithLabelValues(kind, "error").Inc()
}

func (m *Metrics) PublishObserve(kind string, d time.Duration) {
	m.PublishSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) SetConnected(connected bool) {
	if connected {
		m.NATSConnected.Set(1)
		return
	}
	m.NATSConnected.Set(0)
}
