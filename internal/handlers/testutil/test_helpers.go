package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/api"
	"github.com/charlesng35/entrybox/internal/app"
	sharedtestutil "github.com/charlesng35/entrybox/internal/database/testutil"
	"github.com/charlesng35/entrybox/internal/middleware"
)

// TestSecret is the shared secret configured by WithSharedSecret.
const TestSecret = "test-suite-shared-secret"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	Config *app.Config
}

// Option adjusts the configuration before the router is built.
type Option func(*app.Config)

// WithMode selects the service mode.
func WithMode(mode string) Option {
	return func(cfg *app.Config) { cfg.Service.Mode = mode }
}

// WithSharedSecret enables the shared-secret policy using TestSecret.
func WithSharedSecret() Option {
	return func(cfg *app.Config) {
		cfg.Auth.Mode = app.AuthSharedSecret
		cfg.Auth.SharedSecret = TestSecret
	}
}

// WithConfig applies an arbitrary mutation.
func WithConfig(fn func(*app.Config)) Option {
	return fn
}

// DefaultConfig mirrors the built-in defaults with every endpoint set enabled.
func DefaultConfig() *app.Config {
	return &app.Config{
		Server: app.ServerConfig{
			Port:         8000,
			MaxBodyBytes: 2 << 20,
			RateLimit:    app.RateLimitConfig{Window: time.Minute},
		},
		Service: app.ServiceConfig{Mode: app.ModeAll},
		Auth: app.AuthConfig{
			Mode:         app.AuthNone,
			Header:       app.DefaultAPIKeyHeader,
			SharedSecret: app.DefaultSharedSecret,
		},
		Limits: app.LimitsConfig{
			MaxKeyBytes:     512,
			MaxValueBytes:   1 << 20,
			MaxContentBytes: 64 << 10,
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true, Timeout: time.Second},
		},
	}
}

// NewEnv provisions a fresh handler test environment with the served tables migrated.
func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	require.NoError(t, cfg.Validate())

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate(api.ServedTables(cfg)...))

	router, err := api.NewRouter(db, cfg, middleware.NewMemoryRateStore())
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		Config: cfg,
	}
}

// Request executes an HTTP request against the test router. Body values are
// JSON encoded unless they are already raw bytes or a string.
func (e *Env) Request(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	switch v := body.(type) {
	case nil:
		buf = bytes.NewBuffer(nil)
	case []byte:
		buf = bytes.NewBuffer(v)
	case string:
		buf = bytes.NewBufferString(v)
	default:
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns the headers that satisfy the shared-secret policy.
func (e *Env) AuthHeaders() map[string]string {
	return map[string]string{e.Config.Auth.Header: e.Config.Auth.SharedSecret}
}

// DecodeInto unmarshals the response body into T.
func DecodeInto[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
