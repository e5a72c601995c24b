// Package database opens the document store the service reads from.
//
// Two backends are available, selected by store.driver:
//   - mongo: a MongoDB client bound to one database (default deployment)
//   - postgres: a pgx pool over a jsonb documents table
//
// Both satisfy store.Store. The package also wires logging and optional
// New Relic instrumentation into the drivers.
package database

import (
	"fmt"

	"github.com/deppfellow/querybuilder/internal/config"
	loggerConfig "github.com/deppfellow/querybuilder/internal/logger"
	"github.com/deppfellow/querybuilder/internal/store"
	"github.com/rs/zerolog"
)

// PingTimeout is the number of seconds to wait for the startup ping
// before considering the store unreachable.
const PingTimeout = 10

// Database is a store.Store whose lifecycle is owned by the server
// container.
type Database interface {
	store.Store
	Close() error
}

// New opens the backend selected by cfg.Store.Driver.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (Database, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		return NewMongo(cfg, logger, loggerService)
	case config.DriverPostgres:
		return NewPostgres(cfg, logger, loggerService)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
