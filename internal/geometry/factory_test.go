package geometry_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/trackbus/internal/geometry"
	"github.com/UnknownOlympus/trackbus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCoords(lat, lng float64) models.Coordinates {
	return models.Coordinates{Latitude: lat, Longitude: lng}
}

func TestNewLocator(t *testing.T) {
	logger := slog.Default()

	t.Run("create Google locator successfully", func(t *testing.T) {
		config := geometry.LocatorConfig{
			Type:      geometry.LocatorTypeGoogle,
			APIKey:    "test-api-key",
			RateLimit: 10,
			Logger:    logger,
		}

		locator, err := geometry.NewLocator(config)

		require.NoError(t, err)
		require.NotNil(t, locator)
		_, ok := locator.(*geometry.GoogleLocator)
		assert.True(t, ok, "expected locator to be *GoogleLocator")
	})

	t.Run("create Google locator without API key fails", func(t *testing.T) {
		config := geometry.LocatorConfig{
			Type:   geometry.LocatorTypeGoogle,
			Logger: logger,
		}

		locator, err := geometry.NewLocator(config)

		require.Error(t, err)
		require.Nil(t, locator)
		assert.Contains(t, err.Error(), "API key is required for Google locator")
	})

	t.Run("create Google locator without rate limit uses default", func(t *testing.T) {
		config := geometry.LocatorConfig{
			Type:   geometry.LocatorTypeGoogle,
			APIKey: "test-api-key",
			Logger: logger,
		}

		locator, err := geometry.NewLocator(config)

		require.NoError(t, err)
		require.NotNil(t, locator)
	})

	t.Run("create static locator", func(t *testing.T) {
		config := geometry.LocatorConfig{
			Type:     geometry.LocatorTypeStatic,
			Position: mustCoords(43.26, -2.93),
			Logger:   logger,
		}

		locator, err := geometry.NewLocator(config)

		require.NoError(t, err)
		pos, err := locator.CurrentPosition(t.Context())
		require.NoError(t, err)
		assert.Equal(t, mustCoords(43.26, -2.93), pos)
	})

	t.Run("unsupported locator type", func(t *testing.T) {
		config := geometry.LocatorConfig{
			Type:   "gps-dongle",
			Logger: logger,
		}

		locator, err := geometry.NewLocator(config)

		require.Error(t, err)
		require.Nil(t, locator)
		assert.Contains(t, err.Error(), "unsupported locator type: gps-dongle")
	})
}
