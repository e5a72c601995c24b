package handler

import (
	"github.com/deppfellow/querybuilder/internal/server"
	"github.com/deppfellow/querybuilder/internal/service"
)

// Handlers groups every HTTP handler so the router receives one object.
type Handlers struct {
	Health    *HealthHandler
	Documents *DocumentHandler
	AdLimits  *AdLimitsHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(s),
		Documents: NewDocumentHandler(s, services.QueryBuilder),
		AdLimits:  NewAdLimitsHandler(s, services.QueryBuilder),
	}
}
