package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("QUERYBUILDER_PRIMARY.ENV", "local")
	t.Setenv("QUERYBUILDER_SERVER.PORT", "8080")
	t.Setenv("QUERYBUILDER_SERVER.READ_TIMEOUT", "30")
	t.Setenv("QUERYBUILDER_SERVER.WRITE_TIMEOUT", "30")
	t.Setenv("QUERYBUILDER_SERVER.IDLE_TIMEOUT", "60")
	t.Setenv("QUERYBUILDER_SERVER.CORS_ALLOWED_ORIGINS", "*")
	t.Setenv("QUERYBUILDER_STORE.QUERY_TIMEOUT", "5")
}

func setMongoEnv(t *testing.T) {
	t.Helper()
	t.Setenv("QUERYBUILDER_STORE.DRIVER", "mongo")
	t.Setenv("QUERYBUILDER_MONGO.URI", "mongodb://localhost:27017")
	t.Setenv("QUERYBUILDER_MONGO.DATABASE", "ads")
	t.Setenv("QUERYBUILDER_MONGO.CONNECT_TIMEOUT", "10")
}

func TestLoadConfigMongo(t *testing.T) {
	setBaseEnv(t)
	setMongoEnv(t)
	t.Setenv("QUERYBUILDER_MONGO.MAX_POOL_SIZE", "50")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Primary.Env)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Store.QueryTimeout)

	require.NotNil(t, cfg.Mongo)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "ads", cfg.Mongo.Database)
	assert.Equal(t, uint64(50), cfg.Mongo.MaxPoolSize)
	assert.Nil(t, cfg.Database)

	require.NotNil(t, cfg.Observability, "defaults are injected")
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
	assert.Equal(t, 100*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.False(t, cfg.Observability.NewRelicEnabled())
}

func TestLoadConfigPostgres(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("QUERYBUILDER_STORE.DRIVER", "postgres")
	t.Setenv("QUERYBUILDER_DATABASE.HOST", "localhost")
	t.Setenv("QUERYBUILDER_DATABASE.PORT", "5432")
	t.Setenv("QUERYBUILDER_DATABASE.USER", "ads")
	t.Setenv("QUERYBUILDER_DATABASE.PASSWORD", "secret")
	t.Setenv("QUERYBUILDER_DATABASE.NAME", "ads")
	t.Setenv("QUERYBUILDER_DATABASE.SSL_MODE", "disable")
	t.Setenv("QUERYBUILDER_DATABASE.MAX_OPEN_CONNS", "10")
	t.Setenv("QUERYBUILDER_DATABASE.MAX_IDLE_CONNS", "2")
	t.Setenv("QUERYBUILDER_DATABASE.CONN_MAX_LIFETIME", "300")
	t.Setenv("QUERYBUILDER_DATABASE.CONN_MAX_IDLE_TIME", "60")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.NotNil(t, cfg.Database)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Nil(t, cfg.Mongo)
}

func TestLoadConfigRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown driver",
			env:  map[string]string{"QUERYBUILDER_STORE.DRIVER": "redis"},
		},
		{
			name: "mongo driver without mongo block",
			env: map[string]string{
				"QUERYBUILDER_STORE.DRIVER": "mongo",
			},
		},
		{
			name: "postgres driver without database block",
			env: map[string]string{
				"QUERYBUILDER_STORE.DRIVER": "postgres",
			},
		},
		{
			name: "zero query timeout",
			env: map[string]string{
				"QUERYBUILDER_STORE.DRIVER":          "mongo",
				"QUERYBUILDER_STORE.QUERY_TIMEOUT":   "0",
				"QUERYBUILDER_MONGO.URI":             "mongodb://localhost:27017",
				"QUERYBUILDER_MONGO.DATABASE":        "ads",
				"QUERYBUILDER_MONGO.CONNECT_TIMEOUT": "10",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestValidateObservability(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestGetLogLevel(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = ""

	cfg.Environment = "production"
	assert.Equal(t, "info", cfg.GetLogLevel())

	cfg.Environment = "development"
	assert.Equal(t, "debug", cfg.GetLogLevel())

	cfg.Logging.Level = "warn"
	assert.Equal(t, "warn", cfg.GetLogLevel())
}
