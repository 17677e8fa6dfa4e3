package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/trackbus/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TRACKBUS_TRACKING_ROUTE_ID", "L3")
	t.Setenv("TRACKBUS_TRACKING_RIDER_ID", "rider42")
	t.Setenv("TRACKBUS_LOCATOR_API_KEY", "testAPIKey")
	t.Setenv("TRACKBUS_POSTGRES_USER", "admin")
	t.Setenv("TRACKBUS_POSTGRES_DB_NAME", "testName")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Monitoring.Port)
	assert.Equal(t, 10*time.Second, cfg.Tracking.UpdateInterval)
	assert.InDelta(t, 200.0, cfg.Tracking.NotificationDistance, 0)
	assert.Equal(t, 15*time.Second, cfg.Tracking.FetchTimeout)
	assert.Equal(t, "haversine", cfg.Tracking.Distance)
	assert.Equal(t, "L3", cfg.Tracking.RouteID)
	assert.Equal(t, "rider42", cfg.Tracking.RiderID)
	assert.Equal(t, "google", cfg.Locator.Type)
	assert.Equal(t, "testAPIKey", cfg.Locator.APIKey)
	assert.Equal(t, 1, cfg.Locator.RateLimit)
	assert.Equal(t, "nats", cfg.Notify.Sink)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "trackbus", cfg.NATS.SubjectPrefix)
	assert.Empty(t, cfg.Valkey.Addr)
	assert.Equal(t, time.Hour, cfg.Valkey.TTL)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TRACKBUS_ENV", "local")
	t.Setenv("TRACKBUS_MONITORING_PORT", "9100")
	t.Setenv("TRACKBUS_TRACKING_UPDATE_INTERVAL", "3s")
	t.Setenv("TRACKBUS_TRACKING_NOTIFICATION_DISTANCE", "75.5")
	t.Setenv("TRACKBUS_TRACKING_DISTANCE", "planar")
	t.Setenv("TRACKBUS_LOCATOR_TYPE", "static")
	t.Setenv("TRACKBUS_LOCATOR_API_KEY", "")
	t.Setenv("TRACKBUS_LOCATOR_STATIC_LAT", "43.26")
	t.Setenv("TRACKBUS_LOCATOR_STATIC_LNG", "-2.93")
	t.Setenv("TRACKBUS_VALKEY_ADDR", "localhost:6379")
	t.Setenv("TRACKBUS_POSTGRES_HOST", "testHost")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9100, cfg.Monitoring.Port)
	assert.Equal(t, 3*time.Second, cfg.Tracking.UpdateInterval)
	assert.InDelta(t, 75.5, cfg.Tracking.NotificationDistance, 1e-9)
	assert.Equal(t, "planar", cfg.Tracking.Distance)
	assert.Equal(t, "static", cfg.Locator.Type)
	assert.InDelta(t, 43.26, cfg.Locator.StaticLat, 1e-9)
	assert.InDelta(t, -2.93, cfg.Locator.StaticLng, 1e-9)
	assert.Equal(t, "localhost:6379", cfg.Valkey.Addr)
	assert.Equal(t, "testHost", cfg.Database.Host)
}

func TestLoad_FromFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "config.yaml")
	filet.File(t, path, `
env: development
tracking:
  update_interval: 30s
  notification_distance: 150
  route_id: L5
  rider_id: from-file
locator:
  type: static
postgres:
  user: admin
  db_name: testName
`)
	t.Setenv("TRACKBUS_CONFIG", path)
	t.Setenv("TRACKBUS_TRACKING_RIDER_ID", "from-env")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 30*time.Second, cfg.Tracking.UpdateInterval)
	assert.InDelta(t, 150.0, cfg.Tracking.NotificationDistance, 0)
	assert.Equal(t, "L5", cfg.Tracking.RouteID)
	assert.Equal(t, "from-env", cfg.Tracking.RiderID, "environment wins over the file")
	assert.Equal(t, "static", cfg.Locator.Type)
}

func TestLoad_MissingFile(t *testing.T) {
	setRequired(t)
	t.Setenv("TRACKBUS_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()
	require.ErrorContains(t, err, "read config file")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing route", "TRACKBUS_TRACKING_ROUTE_ID", ""},
		{"missing rider", "TRACKBUS_TRACKING_RIDER_ID", ""},
		{"zero interval", "TRACKBUS_TRACKING_UPDATE_INTERVAL", "0s"},
		{"negative distance", "TRACKBUS_TRACKING_NOTIFICATION_DISTANCE", "-1"},
		{"unknown distance", "TRACKBUS_TRACKING_DISTANCE", "manhattan"},
		{"google without key", "TRACKBUS_LOCATOR_API_KEY", ""},
		{"unknown locator", "TRACKBUS_LOCATOR_TYPE", "gps"},
		{"unknown sink", "TRACKBUS_NOTIFY_SINK", "email"},
		{"bad port", "TRACKBUS_MONITORING_PORT", "70000"},
		{"bad latitude", "TRACKBUS_LOCATOR_STATIC_LAT", "91"},
		{"bad sslmode", "TRACKBUS_POSTGRES_SSLMODE", "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			cfg, err := config.Load()
			require.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_UnmarshalError(t *testing.T) {
	setRequired(t)
	t.Setenv("TRACKBUS_TRACKING_UPDATE_INTERVAL", "error_value")

	_, err := config.Load()
	require.ErrorContains(t, err, "unmarshal config")
}

func TestMustLoad(t *testing.T) {
	t.Run("panics", func(t *testing.T) {
		t.Setenv("TRACKBUS_TRACKING_ROUTE_ID", "")
		assert.Panics(t, func() { config.MustLoad() })
	})

	t.Run("loads", func(t *testing.T) {
		setRequired(t)
		assert.NotPanics(t, func() { config.MustLoad() })
	})
}
