// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/querybuilder/internal/handler"
	"github.com/deppfellow/querybuilder/internal/middleware"
	"github.com/deppfellow/querybuilder/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance. Middleware order matters: the
// request id and the New Relic transaction must exist before the context
// enhancer builds the request logger.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.Recover(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerDocumentRoutes(v1, h)

	return router
}
