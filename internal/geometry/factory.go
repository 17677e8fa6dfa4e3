package geometry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/trackbus/internal/models"
	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"
)

// LocatorType represents the type of position locator.
type LocatorType string

const (
	// LocatorTypeGoogle represents the Google Maps Geolocation API.
	LocatorTypeGoogle LocatorType = "google"
	// LocatorTypeStatic represents a fixed, configured position.
	LocatorTypeStatic LocatorType = "static"
)

// LocatorConfig holds configuration for creating a locator.
type LocatorConfig struct {
	Type      LocatorType        // Type of locator to create
	APIKey    string             // API key (used by Google locator)
	RateLimit int                // Requests per second (used by Google locator)
	Position  models.Coordinates // Fixed position (used by static locator)
	Logger    *slog.Logger       // Logger for the locator
}

// NewLocator creates a locator based on the provided configuration.
//
// Supported locator types:
// - "google": Google Maps Geolocation API (requires API key)
// - "static": a fixed position taken from configuration
func NewLocator(config LocatorConfig) (Locator, error) {
	switch config.Type {
	case LocatorTypeGoogle:
		return newGoogleLocator(config)
	case LocatorTypeStatic:
		return NewStaticLocator(config.Position), nil
	default:
		return nil, fmt.Errorf("unsupported locator type: %s", config.Type)
	}
}

// newGoogleLocator creates a Google Maps geolocation locator.
func newGoogleLocator(config LocatorConfig) (Locator, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google locator")
	}

	if config.RateLimit <= 0 {
		config.RateLimit = 1
		config.Logger.Warn("Rate limit for Google locator not set, set a default value", "value", config.RateLimit)
	}

	client, err := maps.NewClient(maps.WithAPIKey(config.APIKey), maps.WithRateLimit(config.RateLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit)

	return NewGoogleLocator(client, limiter, config.Logger), nil
}
