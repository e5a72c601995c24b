package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/querybuilder/internal/config"
	loggerConfig "github.com/deppfellow/querybuilder/internal/logger"
	"github.com/deppfellow/querybuilder/internal/store"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

// findDocumentsSQL matches documents by jsonb containment: the filter is
// rendered as canonical extended JSON, so {"_id": {"$oid": "..."}} matches
// the stored ObjectID and plain strings match plain strings.
const findDocumentsSQL = `SELECT doc FROM documents WHERE collection = $1 AND doc @> $2::jsonb`

// Postgres is the jsonb backend. Documents are stored as extended JSON in
// a single table keyed by collection name.
type Postgres struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger
}

// multiTracer chains pgx tracers; pgx only has a single Tracer slot.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// DSN builds the postgres URL for cfg, escaping the password.
func DSN(cfg *config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

// NewPostgres creates the connection pool with instrumentation and pings it.
//
//   - New Relic tracer (nrpgx5) when the agent is active
//   - pgx tracelog through zerolog in the "local" environment
func NewPostgres(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Postgres, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	if loggerService.GetApplication() != nil {
		pgxPoolConfig.ConnConfig.Tracer = nrpgx5.NewTracer()
	}

	// SQL logging is very noisy, local only.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)

		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		}

		if pgxPoolConfig.ConnConfig.Tracer != nil {
			pgxPoolConfig.ConnConfig.Tracer = &multiTracer{
				tracers: []any{pgxPoolConfig.ConnConfig.Tracer, localTracer},
			}
		} else {
			pgxPoolConfig.ConnConfig.Tracer = localTracer
		}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	db := &Postgres{
		Pool: pool,
		log:  logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout*time.Second)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("connected to the database")

	return db, nil
}

func (db *Postgres) Find(ctx context.Context, collection string, filter store.Filter) (store.Cursor, error) {
	predicate, err := containmentPredicate(filter)
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, findDocumentsSQL, collection, predicate)
	if err != nil {
		return nil, err
	}
	return &rowsCursor{rows: rows}, nil
}

// containmentPredicate renders filter as the jsonb the stored documents
// must contain.
func containmentPredicate(filter store.Filter) (string, error) {
	if filter == nil {
		filter = store.Filter{}
	}
	predicate, err := bson.MarshalExtJSON(filter, true, false)
	if err != nil {
		return "", fmt.Errorf("encoding filter: %w", err)
	}
	return string(predicate), nil
}

func (db *Postgres) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *Postgres) Name() string {
	return config.DriverPostgres
}

// Close closes the connection pool.
func (db *Postgres) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}

// rowsCursor adapts pgx rows of jsonb documents to store.Cursor.
type rowsCursor struct {
	rows    pgx.Rows
	current []byte
	err     error
}

func (c *rowsCursor) Next(context.Context) bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}

	var raw []byte
	if err := c.rows.Scan(&raw); err != nil {
		c.err = err
		return false
	}
	c.current = raw
	return true
}

func (c *rowsCursor) Decode(val any) error {
	if c.current == nil {
		return fmt.Errorf("no current row")
	}
	return bson.UnmarshalExtJSON(c.current, false, val)
}

func (c *rowsCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *rowsCursor) Close(context.Context) error {
	c.rows.Close()
	return nil
}
