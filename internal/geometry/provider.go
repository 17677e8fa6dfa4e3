package geometry

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/trackbus/internal/models"
)

// DistanceFunc returns the distance between two points. Its unit must match
// the configured notification distance.
type DistanceFunc func(a, b models.Coordinates) float64

// Locator reports the rider's current position once.
type Locator interface {
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// Stream delivers an unbounded sequence of position fixes until the returned
// subscription is stopped or ctx is cancelled.
type Stream interface {
	Watch(ctx context.Context) (*Subscription, error)
}

// Common errors of geometry providers.
var (
	ErrPositionFetch = errors.New("failed to fetch current position")
	ErrEmptyResponse = errors.New("geolocation API returned empty response")
)
