package database

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/querybuilder/internal/config"
	loggerConfig "github.com/deppfellow/querybuilder/internal/logger"
	"github.com/deppfellow/querybuilder/internal/store"
	"github.com/newrelic/go-agent/v3/integrations/nrmongo"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo is the MongoDB backend. The client is connected once and bound to
// a single database for its whole lifetime.
type Mongo struct {
	Client *mongo.Client
	db     *mongo.Database
	log    *zerolog.Logger
}

// NewMongo connects to MongoDB and pings the primary.
//
// Instrumentation:
//   - New Relic command monitoring (nrmongo) when the agent is active
//   - a zerolog command monitor in the "local" environment
//
// Both can be active at once: nrmongo wraps the local monitor.
func NewMongo(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Mongo, error) {
	connectTimeout := time.Duration(cfg.Mongo.ConnectTimeout) * time.Second

	clientOptions := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetAppName(config.ServiceName).
		SetConnectTimeout(connectTimeout)

	if cfg.Mongo.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(cfg.Mongo.MaxPoolSize)
	}

	var monitor *event.CommandMonitor
	if cfg.Primary.Env == "local" {
		monitor = newCommandLogger(logger)
	}
	if loggerService.GetApplication() != nil {
		monitor = nrmongo.NewCommandMonitor(monitor)
	}
	if monitor != nil {
		clientOptions.SetMonitor(monitor)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	m := &Mongo{
		Client: client,
		db:     client.Database(cfg.Mongo.Database),
		log:    logger,
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), PingTimeout*time.Second)
	defer pingCancel()
	if err := m.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	return m, nil
}

func (m *Mongo) Find(ctx context.Context, collection string, filter store.Filter) (store.Cursor, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Name() string {
	return config.DriverMongo
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	m.log.Info().Msg("closing mongo connection")

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// newCommandLogger logs every command sent to MongoDB. It is noisy, which
// is why it is only installed in the local environment.
func newCommandLogger(logger *zerolog.Logger) *event.CommandMonitor {
	mongoLogger := logger.With().Str("database", "mongo").Logger()

	return &event.CommandMonitor{
		Started: func(_ context.Context, e *event.CommandStartedEvent) {
			mongoLogger.Debug().
				Int64("request_id", e.RequestID).
				Str("command", e.CommandName).
				Str("db", e.DatabaseName).
				Str("body", e.Command.String()).
				Msg("mongo command started")
		},
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			mongoLogger.Debug().
				Int64("request_id", e.RequestID).
				Str("command", e.CommandName).
				Dur("duration", e.Duration).
				Msg("mongo command succeeded")
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			mongoLogger.Warn().
				Int64("request_id", e.RequestID).
				Str("command", e.CommandName).
				Dur("duration", e.Duration).
				Str("failure", e.Failure).
				Msg("mongo command failed")
		},
	}
}
