package repository

import (
	"github.com/deppfellow/querybuilder/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Documents *DocumentRepository
}

// NewRepositories binds every repository to the server's shared store.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Documents: NewDocumentRepository(
			s.Store,
			s.Logger,
			s.QueryTimeout(),
			s.Config.Observability.Logging.SlowQueryThreshold,
		),
	}
}
