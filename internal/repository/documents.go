package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deppfellow/querybuilder/internal/document"
	"github.com/deppfellow/querybuilder/internal/errs"
	"github.com/deppfellow/querybuilder/internal/store"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentRepository performs the single-document lookups of the service.
//
// Every Get method returns (nil, nil) when no document matches and an
// error wrapping errs.ErrInvalidArgument when its argument is unusable.
// Any other error comes from the store.
type DocumentRepository struct {
	store  store.Store
	logger *zerolog.Logger

	queryTimeout       time.Duration
	slowQueryThreshold time.Duration
}

// NewDocumentRepository binds a repository to s. A zero queryTimeout
// leaves deadlines to the caller's context; a zero slowQueryThreshold
// disables slow lookup logging.
func NewDocumentRepository(s store.Store, logger *zerolog.Logger, queryTimeout, slowQueryThreshold time.Duration) *DocumentRepository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &DocumentRepository{
		store:              s,
		logger:             logger,
		queryTimeout:       queryTimeout,
		slowQueryThreshold: slowQueryThreshold,
	}
}

// GetCampaign fetches a campaign by its ObjectID hex string.
func (r *DocumentRepository) GetCampaign(ctx context.Context, campaignID string) (document.Document, error) {
	return r.getByID(ctx, store.CampaignCollection, "Campaign", campaignID)
}

// GetAudienceCluster fetches an audience cluster by its ObjectID hex string.
func (r *DocumentRepository) GetAudienceCluster(ctx context.Context, audienceClusterID string) (document.Document, error) {
	return r.getByID(ctx, store.AudienceClusterCollection, "Audience Cluster", audienceClusterID)
}

// GetInstalledApps fetches an installed-apps document by its ObjectID hex string.
func (r *DocumentRepository) GetInstalledApps(ctx context.Context, installedAppsID string) (document.Document, error) {
	return r.getByID(ctx, store.InstalledAppsCollection, "Installed Apps", installedAppsID)
}

// GetOrganization fetches an organization by its ObjectID hex string.
func (r *DocumentRepository) GetOrganization(ctx context.Context, organizationID string) (document.Document, error) {
	return r.getByID(ctx, store.OrganizationCollection, "Organization", organizationID)
}

// GetConfigurationByScope fetches the configuration registered for scope.
func (r *DocumentRepository) GetConfigurationByScope(ctx context.Context, scope string) (document.Document, error) {
	if isBlank(scope) {
		return nil, errs.InvalidArgument("scope is either null or empty")
	}

	filter := store.Eq(bson.E{Key: "scope", Value: scope})
	logger := r.log(ctx).With().Str("collection", store.ConfigurationCollection).Str("scope", scope).Logger()

	return r.fetchOptional(ctx, &logger, store.ConfigurationCollection, filter, zerolog.ErrorLevel)
}

// GetConfigurationByScopeAndTag fetches the configuration matching both
// scope and tag. Only scope is required; an empty tag is matched literally.
func (r *DocumentRepository) GetConfigurationByScopeAndTag(ctx context.Context, scope, tag string) (document.Document, error) {
	if isBlank(scope) {
		return nil, errs.InvalidArgument("scope is either null or empty")
	}

	filter := store.Eq(
		bson.E{Key: "scope", Value: scope},
		bson.E{Key: "tag", Value: tag},
	)
	logger := r.log(ctx).With().
		Str("collection", store.ConfigurationCollection).
		Str("scope", scope).
		Str("tag", tag).
		Logger()

	return r.fetchOptional(ctx, &logger, store.ConfigurationCollection, filter, zerolog.ErrorLevel)
}

func (r *DocumentRepository) getByID(ctx context.Context, collection, label, id string) (document.Document, error) {
	if isBlank(id) {
		return nil, errs.InvalidArgument("%s Id is either null or empty", label)
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.InvalidArgument("%s Id %q is not a valid object id: %w", label, id, err)
	}

	filter := store.Eq(bson.E{Key: "_id", Value: objectID})
	logger := r.log(ctx).With().Str("collection", collection).Str("id", id).Logger()

	return r.fetchOptional(ctx, &logger, collection, filter, zerolog.InfoLevel)
}

// fetchOptional wraps FetchDocument with the per-lookup deadline and
// logging, and converts ErrNotFound into an absent result.
func (r *DocumentRepository) fetchOptional(
	ctx context.Context,
	logger *zerolog.Logger,
	collection string,
	filter store.Filter,
	notFoundLevel zerolog.Level,
) (document.Document, error) {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	logger.Info().Msg("fetching document")

	start := time.Now()
	doc, err := FetchDocument(ctx, r.store, filter, collection)
	elapsed := time.Since(start)

	if r.slowQueryThreshold > 0 && elapsed > r.slowQueryThreshold {
		logger.Warn().Dur("duration", elapsed).Msg("slow document lookup")
	}

	switch {
	case errors.Is(err, errs.ErrNotFound):
		logger.WithLevel(notFoundLevel).Msg("document not found")
		return nil, nil
	case err != nil:
		logger.Error().Err(err).Dur("duration", elapsed).Msg("document lookup failed")
		return nil, err
	}

	logger.Debug().Dur("duration", elapsed).Msg("document fetched")
	return doc, nil
}

// log prefers the request-scoped logger carried by ctx.
func (r *DocumentRepository) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return r.logger
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
