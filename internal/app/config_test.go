package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearDatabaseURL(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENTRYBOX_DATABASE_URL", "")
}

func TestLoadConfigFromFile(t *testing.T) {
	clearDatabaseURL(t)

	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.EqualValues(t, 4096, cfg.Server.MaxBodyBytes)
	require.Equal(t, 50, cfg.Server.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)

	require.Equal(t, ModeMessages, cfg.Service.Mode)
	require.False(t, cfg.Service.EntriesEnabled())
	require.True(t, cfg.Service.MessagesEnabled())

	require.True(t, cfg.Auth.SharedSecretRequired())
	require.Equal(t, "X-Entrybox-Key", cfg.Auth.Header)
	require.Equal(t, "s3cret", cfg.Auth.SharedSecret)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, "error", cfg.Database.LogLevel)

	require.Equal(t, 128, cfg.Limits.MaxKeyBytes)
	require.Equal(t, 1<<20, cfg.Limits.MaxValueBytes)
	require.Equal(t, 1024, cfg.Limits.MaxContentBytes)

	require.Equal(t, "@every 5m", cfg.Maintenance.StatsSchedule)
}

func TestLoadConfigDefaults(t *testing.T) {
	clearDatabaseURL(t)

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, ModeEntries, cfg.Service.Mode)
	require.True(t, cfg.Service.EntriesEnabled())
	require.False(t, cfg.Service.MessagesEnabled())
	require.Equal(t, AuthNone, cfg.Auth.Mode)
	require.Equal(t, DefaultAPIKeyHeader, cfg.Auth.Header)
	require.Equal(t, DefaultSharedSecret, cfg.Auth.SharedSecret)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/entrybox.sqlite", cfg.Database.Path)
	require.Empty(t, cfg.Database.URL)
	require.Equal(t, 512, cfg.Limits.MaxKeyBytes)
	require.Equal(t, 64<<10, cfg.Limits.MaxContentBytes)
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	clearDatabaseURL(t)
	t.Setenv("ENTRYBOX_SERVICE_MODE", " ALL ")
	t.Setenv("ENTRYBOX_AUTH_MODE", "shared_secret")
	t.Setenv("ENTRYBOX_AUTH_SHARED_SECRET", "from-env")
	t.Setenv("DATABASE_URL", "sqlite:///./local.db")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, ModeAll, cfg.Service.Mode)
	require.True(t, cfg.Service.EntriesEnabled())
	require.True(t, cfg.Service.MessagesEnabled())
	require.Equal(t, "from-env", cfg.Auth.SharedSecret)
	require.Equal(t, "sqlite:///./local.db", cfg.Database.URL)
}

func TestLoadConfigPrefixedDatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:///./plain.db")
	t.Setenv("ENTRYBOX_DATABASE_URL", "sqlite:///./prefixed.db")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "sqlite:///./prefixed.db", cfg.Database.URL)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	clearDatabaseURL(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ENTRYBOX_SERVER_PORT=9191\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("ENTRYBOX_SERVER_PORT")
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadConfigRejectsKeyLimitWiderThanColumn(t *testing.T) {
	clearDatabaseURL(t)
	t.Setenv("ENTRYBOX_LIMITS_MAX_KEY_BYTES", "4096")

	_, err := LoadConfig(t.TempDir())
	require.ErrorContains(t, err, "limits.max_key_bytes")
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	clearDatabaseURL(t)
	t.Setenv("ENTRYBOX_SERVICE_MODE", "everything")
	t.Setenv("ENTRYBOX_AUTH_MODE", "oauth")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "service.mode")
	require.Contains(t, err.Error(), "auth.mode")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:  ServerConfig{Port: 8000},
		Service: ServiceConfig{Mode: ModeAll},
		Auth:    AuthConfig{Mode: AuthSharedSecret, Header: DefaultAPIKeyHeader, SharedSecret: "x"},
	}
	require.NoError(t, valid.Validate())

	missingSecret := valid
	missingSecret.Auth.SharedSecret = ""
	require.ErrorContains(t, missingSecret.Validate(), "auth.shared_secret")

	badPort := valid
	badPort.Server.Port = 70000
	require.ErrorContains(t, badPort.Validate(), "server.port")

	wideKey := valid
	wideKey.Limits.MaxKeyBytes = 513
	require.ErrorContains(t, wideKey.Validate(), "limits.max_key_bytes")

	negative := valid
	negative.Limits.MaxValueBytes = -1
	require.ErrorContains(t, negative.Validate(), "limits")

	var nilConfig *Config
	require.Error(t, nilConfig.Validate())
}
