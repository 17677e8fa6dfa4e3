package geometry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/trackbus/internal/models"
	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"
)

// GoogleLocator is a struct that holds the client for the Google Maps Geolocation API
// and a logger for logging purposes. It resolves the device position from its
// network context when no GPS fix is available yet.
type GoogleLocator struct {
	client  GoogleAPIClient // client is the Google Maps API client
	limiter *rate.Limiter   // limiter throttles outgoing requests
	log     *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the subset of the Google Maps client used by GoogleLocator.
type GoogleAPIClient interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// NewGoogleLocator initializes a new GoogleLocator with the given client, rate limiter and logger.
func NewGoogleLocator(client GoogleAPIClient, limiter *rate.Limiter, log *slog.Logger) *GoogleLocator {
	return &GoogleLocator{client: client, limiter: limiter, log: log}
}

// CurrentPosition asks the Geolocation API for the current position of the device.
// Every failure is wrapped with ErrPositionFetch.
func (gl *GoogleLocator) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	if err := gl.limiter.Wait(ctx); err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: rate limit exceeded: %w", ErrPositionFetch, err)
	}

	gl.log.DebugContext(ctx, "Locating using Google Maps")

	req := maps.GeolocationRequest{ConsiderIP: true}
	result, err := gl.client.Geolocate(ctx, &req)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %w", ErrPositionFetch, err)
	}

	if result == nil {
		return models.Coordinates{}, fmt.Errorf("%w: %w", ErrPositionFetch, ErrEmptyResponse)
	}

	gl.log.DebugContext(ctx, "Google Maps located device",
		"lat", result.Location.Lat, "lng", result.Location.Lng, "accuracy", result.Accuracy)

	return models.Coordinates{Latitude: result.Location.Lat, Longitude: result.Location.Lng}, nil
}
