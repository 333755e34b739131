package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("PORT", "")
	t.Setenv("OUTBOUND_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 5*time.Second, cfg.Store.OutboundTimeout)
	assert.Equal(t, "0.4.0", cfg.App.Version)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("DB_DSN", "postgres://localhost/raksha")
	t.Setenv("OUTBOUND_TIMEOUT", "750ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AUTH_RATE_LIMIT_RPS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Store.OutboundTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, float64(5), cfg.RateLimit.AuthRPS)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "5000"},
			Firebase: FirebaseConfig{CredentialsPath: "key.json", DatabaseURL: "https://x.firebaseio.com"},
			Store:    StoreConfig{Backend: BackendFirebase, OutboundTimeout: time.Second},
		}
	}

	t.Run("firebase store needs a database url", func(t *testing.T) {
		cfg := base()
		cfg.Firebase.DatabaseURL = ""
		assert.ErrorContains(t, cfg.Validate(), "FIREBASE_DATABASE_URL")
	})

	t.Run("postgres store needs a dsn", func(t *testing.T) {
		cfg := base()
		cfg.Store.Backend = BackendPostgres
		assert.ErrorContains(t, cfg.Validate(), "DB_DSN")
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.Store.Backend = "mongo"
		assert.Error(t, cfg.Validate())
	})

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})
}
