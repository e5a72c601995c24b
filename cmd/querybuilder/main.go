// Command querybuilder serves the ad query builder's document lookups and
// ad limit resolution over HTTP.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/querybuilder/internal/config"
	"github.com/deppfellow/querybuilder/internal/database"
	"github.com/deppfellow/querybuilder/internal/handler"
	"github.com/deppfellow/querybuilder/internal/logger"
	"github.com/deppfellow/querybuilder/internal/repository"
	"github.com/deppfellow/querybuilder/internal/router"
	"github.com/deppfellow/querybuilder/internal/server"
	"github.com/deppfellow/querybuilder/internal/service"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

// newBootstrapLogger is used until the configured logger exists.
func newBootstrapLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("service", config.ServiceName).Logger()
}

func main() {
	bootstrap := newBootstrapLogger(os.Stderr)

	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		bootstrap.Fatal().Err(err).Msg("failed to initialize logger service")
	}

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, &log, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
