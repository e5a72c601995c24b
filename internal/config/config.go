// Package config manages environment variables.
//
// It reads variables from the `.env` file and the process environment,
// loads them into structured Go types, and validates that required values
// are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the QUERYBUILDER_ prefix. Keys are lowercased and
	the prefix removed; nesting uses the "." delimiter, so

		QUERYBUILDER_MONGO.URI -> mongo.uri -> Config.Mongo.URI
*/

// EnvPrefix is the prefix every configuration variable carries.
const EnvPrefix = "QUERYBUILDER_"

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config is the root configuration object for the application.
//
// Mongo and Database are pointers because only the block matching
// Store.Driver is required. Observability is optional; defaults are
// injected when it is missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Store         StoreConfig          `koanf:"store" validate:"required"`
	Mongo         *MongoConfig         `koanf:"mongo"`
	Database      *DatabaseConfig      `koanf:"database"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// StoreConfig selects the document store backend.
//
// QueryTimeout (seconds) bounds every single lookup issued by the
// repository layer.
type StoreConfig struct {
	Driver       string `koanf:"driver" validate:"required,oneof=mongo postgres"`
	QueryTimeout int    `koanf:"query_timeout" validate:"required,min=1"`
}

// MongoConfig contains the MongoDB connection parameters.
// The client is bound to a single database for its whole lifetime.
type MongoConfig struct {
	URI            string `koanf:"uri" validate:"required"`
	Database       string `koanf:"database" validate:"required"`
	ConnectTimeout int    `koanf:"connect_timeout" validate:"required,min=1"`
	MaxPoolSize    uint64 `koanf:"max_pool_size"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning
// for the JSONB document backend.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, applies defaults, and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	// Only variables carrying the prefix are read. The mapping function
	// strips the prefix and lowercases the rest; "." in the variable name
	// is what produces nesting.
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate runs the struct-tag validator, checks the driver specific
// blocks, and finalizes the observability block.
//
// It mutates c: a missing Observability block is replaced by defaults and
// the service name/environment are always forced.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Driver specific blocks are pointers so the tag validator skips them
	// when absent. Enforce the one matching the selected driver here.
	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo == nil {
			return fmt.Errorf("mongo config is required when store.driver is %q", DriverMongo)
		}
	case DriverPostgres:
		if c.Database == nil {
			return fmt.Errorf("database config is required when store.driver is %q", DriverPostgres)
		}
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service naming is not configurable so telemetry stays consistent.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := validate.Struct(c.Observability); err != nil {
		return fmt.Errorf("observability config validation failed: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}
