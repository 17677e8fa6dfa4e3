package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. TRACKBUS_NATS_URL -> nats.url.
const EnvPrefix = "TRACKBUS"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the configuration settings for the tracker service.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Monitoring: The monitoring server settings.
// - Tracking: Route, rider and proximity settings.
// - Locator: The one-shot position source.
// - Notify: Where stop notifications and alerts are delivered.
// - NATS: The broker carrying position fixes, watch commands and notifications.
// - Valkey: The route stop cache; an empty address disables it.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env        string           `mapstructure:"env"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Tracking   TrackingConfig   `mapstructure:"tracking"`
	Locator    LocatorConfig    `mapstructure:"locator"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Database   PostgresConfig   `mapstructure:"postgres"`
}

type MonitoringConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// TrackingConfig drives the proximity session.
type TrackingConfig struct {
	UpdateInterval       time.Duration `mapstructure:"update_interval"       validate:"gt=0"`
	NotificationDistance float64       `mapstructure:"notification_distance" validate:"gt=0"`
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"         validate:"gt=0"`
	Distance             string        `mapstructure:"distance"              validate:"oneof=haversine planar"`
	RouteID              string        `mapstructure:"route_id"              validate:"required"`
	RiderID              string        `mapstructure:"rider_id"              validate:"required"`
}

type LocatorConfig struct {
	Type      string  `mapstructure:"type"       validate:"oneof=google static"`
	APIKey    string  `mapstructure:"api_key"    validate:"required_if=Type google"`
	RateLimit int     `mapstructure:"rate_limit" validate:"gte=0"`
	StaticLat float64 `mapstructure:"static_lat" validate:"gte=-90,lte=90"`
	StaticLng float64 `mapstructure:"static_lng" validate:"gte=-180,lte=180"`
}

type NotifyConfig struct {
	Sink string `mapstructure:"sink" validate:"oneof=nats log"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"            validate:"required"`
	SubjectPrefix string `mapstructure:"subject_prefix" validate:"required"`
}

type ValkeyConfig struct {
	Addr string        `mapstructure:"addr"`
	TTL  time.Duration `mapstructure:"ttl"  validate:"gte=0"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"     validate:"required"`
	Port     string `mapstructure:"port"     validate:"required"`
	User     string `mapstructure:"user"     validate:"required"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"db_name"  validate:"required"`
	SSLMode  string `mapstructure:"sslmode"  validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// Load reads a .env file when present, then an optional YAML file pointed to by
// TRACKBUS_CONFIG (or ./config.yaml), then TRACKBUS_* environment variables,
// and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path, ok := os.LookupEnv(EnvPrefix + "_CONFIG"); ok && path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // OK if missing
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is like Load but panics when the configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	return cfg
}

// Validate checks the struct tags of every section.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("monitoring.port", 8080)

	v.SetDefault("tracking.update_interval", 10*time.Second)
	v.SetDefault("tracking.notification_distance", 200.0)
	v.SetDefault("tracking.fetch_timeout", 15*time.Second)
	v.SetDefault("tracking.distance", "haversine")
	v.SetDefault("tracking.route_id", "")
	v.SetDefault("tracking.rider_id", "")

	v.SetDefault("locator.type", "google")
	v.SetDefault("locator.api_key", "")
	v.SetDefault("locator.rate_limit", 1)
	v.SetDefault("locator.static_lat", 0.0)
	v.SetDefault("locator.static_lng", 0.0)

	v.SetDefault("notify.sink", "nats")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "trackbus")

	v.SetDefault("valkey.addr", "")
	v.SetDefault("valkey.ttl", time.Hour)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", "")
	v.SetDefault("postgres.sslmode", "disable")
}
