package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearRentalEnv unsets every RENTAL_ variable for the duration of the test
func clearRentalEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "RENTAL_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func fromTOML(t *testing.T, doc string) (*Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return fromViper(v)
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearRentalEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "rentalcore", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "rentalcore", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
		assert.Equal(t, "memory", cfg.Idempotency.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.True(t, cfg.Rental.DefaultTaxRate.IsZero())
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiration)
	})

	t.Run("loads values from environment variables with RENTAL prefix", func(t *testing.T) {
		clearRentalEnv(t)
		t.Setenv("RENTAL_APP_NAME", "test-app")
		t.Setenv("RENTAL_APP_PORT", "9000")
		t.Setenv("RENTAL_DATABASE_HOST", "testdb.local")
		t.Setenv("RENTAL_DATABASE_PORT", "5433")
		t.Setenv("RENTAL_DATABASE_PASSWORD", "testpass")
		t.Setenv("RENTAL_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("RENTAL_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("RENTAL_RENTAL_DEFAULT_TAX_RATE", "8.25")
		t.Setenv("RENTAL_STORAGE_BUCKET", "evidence")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, decimal.RequireFromString("8.25").Equal(cfg.Rental.DefaultTaxRate))
		assert.Equal(t, "evidence", cfg.Storage.Bucket)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearRentalEnv(t)
		t.Setenv("RENTAL_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("RENTAL_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearRentalEnv(t)
		t.Setenv("RENTAL_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects malformed tax rate", func(t *testing.T) {
		clearRentalEnv(t)
		t.Setenv("RENTAL_RENTAL_DEFAULT_TAX_RATE", "ten")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rental.default_tax_rate")
	})

	t.Run("rejects tax rate above 100", func(t *testing.T) {
		clearRentalEnv(t)
		t.Setenv("RENTAL_RENTAL_DEFAULT_TAX_RATE", "150")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "between 0 and 100")
	})
}

func TestFromViper_TOML(t *testing.T) {
	clearRentalEnv(t)

	t.Run("reads sections from toml", func(t *testing.T) {
		cfg, err := fromTOML(t, `
[app]
name = "depot"

[http]
read_timeout = "5s"
cors_allow_origins = ["https://depot.example"]

[redis]
enabled = true
host = "cache"

[idempotency]
backend = "REDIS"
ttl = "1h"

[rental]
default_tax_rate = "7.5"
currency = "EUR"

[printing]
enabled = true
remote_url = "ws://chrome:9222"
`)
		require.NoError(t, err)
		assert.Equal(t, "depot", cfg.App.Name)
		assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
		assert.Equal(t, []string{"https://depot.example"}, cfg.HTTP.CORSAllowOrigins)
		assert.Equal(t, "cache:6379", cfg.Redis.Addr())
		assert.Equal(t, "redis", cfg.Idempotency.Backend)
		assert.Equal(t, time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, "7.5", cfg.Rental.DefaultTaxRate.String())
		assert.Equal(t, "EUR", cfg.Rental.Currency)
		assert.True(t, cfg.Printing.Enabled)
		assert.Equal(t, "ws://chrome:9222", cfg.Printing.RemoteURL)
	})

	t.Run("redis idempotency requires redis", func(t *testing.T) {
		_, err := fromTOML(t, `
[idempotency]
backend = "redis"
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires redis.enabled")
	})

	t.Run("unknown idempotency backend", func(t *testing.T) {
		_, err := fromTOML(t, `
[idempotency]
backend = "etcd"
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "memory or redis")
	})

	t.Run("storage requires credentials when enabled", func(t *testing.T) {
		_, err := fromTOML(t, `
[storage]
enabled = true
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.access_key")
	})

	t.Run("jwt requires secret when enabled", func(t *testing.T) {
		_, err := fromTOML(t, `
[jwt]
enabled = true
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required")
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		_, err := fromTOML(t, `
[telemetry]
sampling_ratio = 1.5
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearRentalEnv(t)
		t.Setenv("RENTAL_APP_ENV", "production")
		t.Setenv("RENTAL_JWT_ENABLED", "true")
		t.Setenv("RENTAL_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("RENTAL_DATABASE_PASSWORD", "secure-password")
		t.Setenv("RENTAL_DATABASE_SSLMODE", "require")
		t.Setenv("RENTAL_SWAGGER_ENABLED", "false")
		t.Setenv("RENTAL_REDIS_ENABLED", "true")
		t.Setenv("RENTAL_IDEMPOTENCY_BACKEND", "redis")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "requires jwt enabled",
			env:     map[string]string{"RENTAL_JWT_ENABLED": "false"},
			wantErr: "jwt.enabled must be true in production",
		},
		{
			name:    "requires jwt.secret at least 32 characters",
			env:     map[string]string{"RENTAL_JWT_SECRET": "short-secret"},
			wantErr: "jwt.secret must be at least 32 characters",
		},
		{
			name:    "requires database.password",
			env:     map[string]string{"RENTAL_DATABASE_PASSWORD": ""},
			wantErr: "database.password is required in production",
		},
		{
			name:    "requires SSL enabled",
			env:     map[string]string{"RENTAL_DATABASE_SSLMODE": "disable"},
			wantErr: "database.sslmode cannot be 'disable' in production",
		},
		{
			name:    "fails if swagger enabled without ip restriction",
			env:     map[string]string{"RENTAL_SWAGGER_ENABLED": "true"},
			wantErr: "swagger endpoint must be disabled or IP-restricted",
		},
		{
			name:    "rejects in-memory idempotency store",
			env:     map[string]string{"RENTAL_IDEMPOTENCY_BACKEND": "memory"},
			wantErr: "use redis in production",
		},
		{
			name:    "rejects full SQL logging",
			env:     map[string]string{"RENTAL_TELEMETRY_DB_LOG_FULL_SQL": "true"},
			wantErr: "db_log_full_sql must be false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidProductionBase(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}
