package geometry

import (
	"context"

	"github.com/UnknownOlympus/trackbus/internal/models"
)

// StaticLocator always reports the same position.
type StaticLocator struct {
	position models.Coordinates
}

// NewStaticLocator creates a locator fixed at the given position.
func NewStaticLocator(position models.Coordinates) *StaticLocator {
	return &StaticLocator{position: position}
}

// CurrentPosition returns the configured position unless ctx is already done.
func (sl *StaticLocator) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}
	return sl.position, nil
}
