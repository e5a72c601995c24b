package service

import (
	"github.com/deppfellow/querybuilder/internal/repository"
	"github.com/deppfellow/querybuilder/internal/server"
)

type Services struct {
	QueryBuilder *QueryBuilderService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		QueryBuilder: NewQueryBuilderService(repos.Documents, s.Logger),
	}, nil
}
