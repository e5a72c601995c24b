// Package server defines the core Server struct that composes the app's
// main dependencies, and owns their lifecycle:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the document store connection
//   - http.Server
//
// The store connection is opened here and closed on Shutdown; nothing
// downstream ever closes it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/querybuilder/internal/config"
	"github.com/deppfellow/querybuilder/internal/database"
	loggerPkg "github.com/deppfellow/querybuilder/internal/logger"
	"github.com/rs/zerolog"
)

// Server is the application container that holds shared resources. It is
// not the HTTP server itself.
type Server struct {
	Config *config.Config
	Logger *zerolog.Logger

	// LoggerService holds the New Relic application; its application is
	// nil when APM is disabled.
	LoggerService *loggerPkg.LoggerService

	// Store is the shared document store connection.
	Store database.Database

	httpServer *http.Server
}

// New constructs a Server and opens the document store.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	store, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	return NewWithStore(cfg, logger, loggerService, store), nil
}

// NewWithStore builds a Server around an already opened store.
func NewWithStore(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService, store database.Database) *Server {
	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Store:         store,
	}
}

// QueryTimeout is the deadline applied to every single lookup.
func (s *Server) QueryTimeout() time.Duration {
	return time.Duration(s.Config.Store.QueryTimeout) * time.Second
}

// SetupHTTPServer configures the internal net/http server around handler.
// Config timeouts are interpreted as seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. SetupHTTPServer must be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("store", s.Store.Name()).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server, waiting for in-flight requests until ctx
// expires, then closes the store and flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if err := s.Store.Close(); err != nil {
		return fmt.Errorf("failed to close document store: %w", err)
	}

	s.LoggerService.Shutdown()

	return nil
}
