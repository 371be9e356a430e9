package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/charlesng35/entrybox/internal/models"
)

// Service modes select which endpoint sets a deployment exposes.
const (
	ModeEntries  = "entries"
	ModeMessages = "messages"
	ModeAll      = "all"
)

// Authentication policies for the messages endpoint set.
const (
	AuthNone         = "none"
	AuthSharedSecret = "shared_secret"
)

const (
	// DefaultSharedSecret is used when auth.shared_secret is not configured.
	DefaultSharedSecret = "entrybox-shared-secret"
	DefaultAPIKeyHeader = "x-api-key"
)

// Config represents the runtime configuration for the entrybox server.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Service     ServiceConfig     `mapstructure:"service"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Limits      LimitsConfig      `mapstructure:"limits"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	LogLevel        string          `mapstructure:"log_level"`
	LogFormat       string          `mapstructure:"log_format"`
	MaxBodyBytes    int64           `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig limits requests per client and route. Zero requests disables it.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ServiceConfig selects the endpoint sets served by this process.
type ServiceConfig struct {
	Mode string `mapstructure:"mode"`
}

// EntriesEnabled reports whether the key/value endpoints are served.
func (s ServiceConfig) EntriesEnabled() bool {
	mode := normalise(s.Mode)
	return mode == ModeEntries || mode == ModeAll || mode == ""
}

// MessagesEnabled reports whether the message endpoints are served.
func (s ServiceConfig) MessagesEnabled() bool {
	mode := normalise(s.Mode)
	return mode == ModeMessages || mode == ModeAll
}

// AuthConfig controls the access check in front of the message endpoints.
type AuthConfig struct {
	Mode         string `mapstructure:"mode"`
	Header       string `mapstructure:"header"`
	SharedSecret string `mapstructure:"shared_secret"`
}

// SharedSecretRequired reports whether the shared-secret policy is active.
func (a AuthConfig) SharedSecretRequired() bool {
	return normalise(a.Mode) == AuthSharedSecret
}

// DatabaseConfig describes connection options for the supported databases.
// URL takes precedence over every other field when set.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	LogLevel        string        `mapstructure:"log_level"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Postgres        DBAuthConfig  `mapstructure:"postgres"`
	MySQL           DBAuthConfig  `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// LimitsConfig bounds stored payload sizes in bytes. Zero disables a limit.
type LimitsConfig struct {
	MaxKeyBytes     int `mapstructure:"max_key_bytes"`
	MaxValueBytes   int `mapstructure:"max_value_bytes"`
	MaxContentBytes int `mapstructure:"max_content_bytes"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MaintenanceConfig schedules background jobs.
type MaintenanceConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	StatsSchedule string `mapstructure:"stats_schedule"`
}

// LoadConfig reads configuration from config.yaml, an optional .env file and
// the environment, in increasing order of precedence.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("ENTRYBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", "ENTRYBOX_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("config: bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	config.normalise()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &config, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	var err error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("server.port must be between 1 and 65535 (current: %d)", c.Server.Port))
	}
	if c.Server.MaxBodyBytes < 0 {
		err = multierr.Append(err, errors.New("server.max_body_bytes must not be negative"))
	}
	if c.Server.RateLimit.Requests < 0 {
		err = multierr.Append(err, errors.New("server.rate_limit.requests must not be negative"))
	}

	switch c.Service.Mode {
	case ModeEntries, ModeMessages, ModeAll:
	default:
		err = multierr.Append(err, fmt.Errorf("service.mode must be one of entries, messages, all (current: %q)", c.Service.Mode))
	}

	switch c.Auth.Mode {
	case AuthNone:
	case AuthSharedSecret:
		if c.Auth.SharedSecret == "" {
			err = multierr.Append(err, errors.New("auth.shared_secret must be set when auth.mode is shared_secret"))
		}
		if c.Auth.Header == "" {
			err = multierr.Append(err, errors.New("auth.header must be set when auth.mode is shared_secret"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("auth.mode must be none or shared_secret (current: %q)", c.Auth.Mode))
	}

	if c.Limits.MaxKeyBytes < 0 || c.Limits.MaxValueBytes < 0 || c.Limits.MaxContentBytes < 0 {
		err = multierr.Append(err, errors.New("limits must not be negative"))
	}
	if c.Limits.MaxKeyBytes > models.MaxKeyLength {
		err = multierr.Append(err, fmt.Errorf("limits.max_key_bytes must not exceed %d, the width of entries.key (current: %d)", models.MaxKeyLength, c.Limits.MaxKeyBytes))
	}

	return err
}

func (c *Config) normalise() {
	c.Service.Mode = normalise(c.Service.Mode)
	c.Auth.Mode = normalise(c.Auth.Mode)
	c.Auth.Header = strings.TrimSpace(c.Auth.Header)
	c.Database.URL = strings.TrimSpace(c.Database.URL)
	c.Database.Driver = normalise(c.Database.Driver)
}

func normalise(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.max_body_bytes", 2<<20)
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.rate_limit.requests", 0)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("service.mode", ModeEntries)

	v.SetDefault("auth.mode", AuthNone)
	v.SetDefault("auth.header", DefaultAPIKeyHeader)
	v.SetDefault("auth.shared_secret", DefaultSharedSecret)

	v.SetDefault("database.url", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/entrybox.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 0)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.username", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.mysql.host", "")
	v.SetDefault("database.mysql.port", 0)
	v.SetDefault("database.mysql.database", "")
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")

	v.SetDefault("limits.max_key_bytes", 512)
	v.SetDefault("limits.max_value_bytes", 1<<20)
	v.SetDefault("limits.max_content_bytes", 64<<10)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)
	v.SetDefault("monitoring.health_check.timeout", "2s")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.stats_schedule", "@every 1m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
