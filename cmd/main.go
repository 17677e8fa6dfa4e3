package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/trackbus/internal/broker"
	"github.com/UnknownOlympus/trackbus/internal/cache"
	"github.com/UnknownOlympus/trackbus/internal/config"
	"github.com/UnknownOlympus/trackbus/internal/geometry"
	"github.com/UnknownOlympus/trackbus/internal/metrics"
	"github.com/UnknownOlympus/trackbus/internal/models"
	"github.com/UnknownOlympus/trackbus/internal/notify"
	"github.com/UnknownOlympus/trackbus/internal/repository"
	"github.com/UnknownOlympus/trackbus/internal/route"
	"github.com/UnknownOlympus/trackbus/internal/service"
	"github.com/UnknownOlympus/trackbus/internal/watchlist"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// publisher delivers both stop notifications and alerts.
type publisher interface {
	notify.Notifier
	notify.Alerter
}

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection.
	dtb, err := repository.NewDatabase(
		ctx,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	var repo repository.Interface = repository.NewRepository(dtb, logger)
	var cachePing func(context.Context) error
	if cfg.Valkey.Addr != "" {
		stopsCache, errCache := cache.NewValkey(cfg.Valkey.Addr)
		if errCache != nil {
			log.Fatalf("Failed to connect to Valkey: %v", errCache)
		}
		defer stopsCache.Close()
		cachePing = stopsCache.Ping
		repo = repository.NewCachedRepository(repo, stopsCache, cfg.Valkey.TTL, logger)
	}

	stops, err := repo.FetchRouteStops(ctx, cfg.Tracking.RouteID)
	if err != nil {
		log.Fatalf("Failed to load route %s: %v", cfg.Tracking.RouteID, err)
	}

	rt, err := route.Build(stops, route.BySequence)
	if err != nil {
		log.Fatalf("Failed to build route %s: %v", cfg.Tracking.RouteID, err)
	}

	distance, err := geometry.NewDistance(geometry.DistanceType(cfg.Tracking.Distance))
	if err != nil {
		log.Fatalf("Failed to create distance measurer: %v", err)
	}

	// Create the one-shot locator using factory pattern based on configuration.
	locator, err := geometry.NewLocator(geometry.LocatorConfig{
		Type:      geometry.LocatorType(cfg.Locator.Type),
		APIKey:    cfg.Locator.APIKey,
		RateLimit: cfg.Locator.RateLimit,
		Position:  models.Coordinates{Latitude: cfg.Locator.StaticLat, Longitude: cfg.Locator.StaticLng},
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create locator: %v", err)
	}

	conn, err := broker.Connect(cfg.NATS.URL, "trackbus-"+cfg.Tracking.RiderID, logger, appMetrics)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer conn.Close()

	prefix, rider := cfg.NATS.SubjectPrefix, cfg.Tracking.RiderID

	var pub publisher
	switch cfg.Notify.Sink {
	case "log":
		pub = notify.NewLogPublisher(logger)
	default:
		pub = notify.NewNATSPublisher(conn, prefix, rider, logger, appMetrics)
	}

	session, err := service.NewSession(
		logger,
		service.Config{
			UpdateInterval:       cfg.Tracking.UpdateInterval,
			NotificationDistance: cfg.Tracking.NotificationDistance,
			FetchTimeout:         cfg.Tracking.FetchTimeout,
		},
		rt,
		watchlist.New(pub, logger),
		service.Collaborators{
			Locator:  locator,
			Stream:   geometry.NewNATSStream(conn, broker.Subject(prefix, broker.KindPosition, rider), logger),
			Commands: service.NewNATSCommands(conn, broker.Subject(prefix, broker.KindWatch, rider), logger),
			Notifier: pub,
			Alerter:  pub,
			Distance: distance,
		},
		appMetrics,
	)
	if err != nil {
		log.Fatalf("Failed to create tracking session: %v", err)
	}

	logger.InfoContext(ctx, "Tracking session initialized",
		"route", cfg.Tracking.RouteID,
		"rider", rider,
		"stops", rt.Len(),
		"locator", cfg.Locator.Type,
		"sink", cfg.Notify.Sink,
	)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, dtb, cachePing, session, cfg.Monitoring.Port)

	go func() {
		if errRun := session.Run(ctx); errRun != nil {
			logger.ErrorContext(ctx, "Tracking session failed", "error", errRun)
			stop()
		}
	}()

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	if err = conn.Drain(); err != nil {
		logger.WarnContext(ctx, "Failed to drain NATS connection", "error", err)
	}

	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// startMonitoringServer starts an HTTP server that provides health check, metrics and status endpoints.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - dtb: A pgxpool connector for database methods (ping)
// - cachePing: Pings the stop cache; nil when the cache is disabled.
// - session: The tracking session reported by /status.
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	cachePing func(context.Context) error,
	session *service.Session,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := dtb.Ping(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		} else if cachePing != nil {
			if err = cachePing(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, "Cache ping failed"
			}
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.HandleFunc("/status", func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(writer).Encode(session.Status()); err != nil {
			log.ErrorContext(ctx, "failed to write status", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(readTimeout)*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
