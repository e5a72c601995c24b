package service

import (
	"context"

	"github.com/deppfellow/querybuilder/internal/adlimits"
	"github.com/deppfellow/querybuilder/internal/document"
	"github.com/rs/zerolog"
)

// DocumentFinder is the subset of the document repository the query
// builder depends on.
type DocumentFinder interface {
	GetCampaign(ctx context.Context, campaignID string) (document.Document, error)
	GetAudienceCluster(ctx context.Context, audienceClusterID string) (document.Document, error)
	GetInstalledApps(ctx context.Context, installedAppsID string) (document.Document, error)
	GetOrganization(ctx context.Context, organizationID string) (document.Document, error)
	GetConfigurationByScope(ctx context.Context, scope string) (document.Document, error)
	GetConfigurationByScopeAndTag(ctx context.Context, scope, tag string) (document.Document, error)
}

// QueryBuilderService serves the lookups the ad query builder needs.
type QueryBuilderService struct {
	documents DocumentFinder
	logger    *zerolog.Logger
}

func NewQueryBuilderService(documents DocumentFinder, logger *zerolog.Logger) *QueryBuilderService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &QueryBuilderService{
		documents: documents,
		logger:    logger,
	}
}

func (s *QueryBuilderService) Campaign(ctx context.Context, id string) (document.Document, error) {
	return s.documents.GetCampaign(ctx, id)
}

func (s *QueryBuilderService) AudienceCluster(ctx context.Context, id string) (document.Document, error) {
	return s.documents.GetAudienceCluster(ctx, id)
}

func (s *QueryBuilderService) InstalledApps(ctx context.Context, id string) (document.Document, error) {
	return s.documents.GetInstalledApps(ctx, id)
}

func (s *QueryBuilderService) Organization(ctx context.Context, id string) (document.Document, error) {
	return s.documents.GetOrganization(ctx, id)
}

// Configuration looks a configuration up by scope, narrowed by tag when
// hasTag is set. An explicitly empty tag is still a tag.
func (s *QueryBuilderService) Configuration(ctx context.Context, scope, tag string, hasTag bool) (document.Document, error) {
	if hasTag {
		return s.documents.GetConfigurationByScopeAndTag(ctx, scope, tag)
	}
	return s.documents.GetConfigurationByScope(ctx, scope)
}

// AdLimits fetches the organization and resolves its ad limits for
// targetPackages. The resolver is nil when the organization does not exist.
func (s *QueryBuilderService) AdLimits(ctx context.Context, organizationID string, targetPackages []string) (*adlimits.Resolver, error) {
	organization, err := s.documents.GetOrganization(ctx, organizationID)
	if err != nil || organization == nil {
		return nil, err
	}

	logger := s.requestLogger(ctx).With().
		Str("organization_id", organizationID).
		Strs("target_packages", targetPackages).
		Logger()

	resolver := adlimits.NewWithLogger(organization, targetPackages, logger)

	logger.Debug().Str("source", string(resolver.Source())).Msg("ad limits resolved")

	return resolver, nil
}

func (s *QueryBuilderService) requestLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}
