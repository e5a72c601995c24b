package handler

import (
	"fmt"

	"github.com/deppfellow/querybuilder/internal/document"
	"github.com/deppfellow/querybuilder/internal/errs"
	"github.com/deppfellow/querybuilder/internal/server"
	"github.com/deppfellow/querybuilder/internal/service"
	"github.com/deppfellow/querybuilder/internal/validation"
	"github.com/labstack/echo/v4"
)

// GetDocumentRequest addresses one document by id. Blank and malformed
// ids are rejected by the repository, not here.
type GetDocumentRequest struct {
	ID string `param:"id" validate:"max=64"`
}

func (r *GetDocumentRequest) Validate() error {
	return validation.Validator().Struct(r)
}

func NewGetDocumentRequest() *GetDocumentRequest {
	return &GetDocumentRequest{}
}

// GetConfigurationRequest looks a configuration up by scope and, when the
// tag query parameter is present, by tag.
type GetConfigurationRequest struct {
	Scope string `query:"scope" validate:"max=256"`
	Tag   string `query:"tag" validate:"max=256"`
}

func (r *GetConfigurationRequest) Validate() error {
	return validation.Validator().Struct(r)
}

func NewGetConfigurationRequest() *GetConfigurationRequest {
	return &GetConfigurationRequest{}
}

// DocumentHandler serves the single document lookups.
type DocumentHandler struct {
	Handler
	queryBuilder *service.QueryBuilderService
}

func NewDocumentHandler(s *server.Server, queryBuilder *service.QueryBuilderService) *DocumentHandler {
	return &DocumentHandler{
		Handler:      NewHandler(s),
		queryBuilder: queryBuilder,
	}
}

func (h *DocumentHandler) GetCampaign(c echo.Context, req *GetDocumentRequest) (map[string]any, error) {
	doc, err := h.queryBuilder.Campaign(c.Request().Context(), req.ID)
	return found(doc, err, "campaign %s not found", req.ID)
}

func (h *DocumentHandler) GetAudienceCluster(c echo.Context, req *GetDocumentRequest) (map[string]any, error) {
	doc, err := h.queryBuilder.AudienceCluster(c.Request().Context(), req.ID)
	return found(doc, err, "audience cluster %s not found", req.ID)
}

func (h *DocumentHandler) GetInstalledApps(c echo.Context, req *GetDocumentRequest) (map[string]any, error) {
	doc, err := h.queryBuilder.InstalledApps(c.Request().Context(), req.ID)
	return found(doc, err, "installed apps %s not found", req.ID)
}

func (h *DocumentHandler) GetOrganization(c echo.Context, req *GetDocumentRequest) (map[string]any, error) {
	doc, err := h.queryBuilder.Organization(c.Request().Context(), req.ID)
	return found(doc, err, "organization %s not found", req.ID)
}

func (h *DocumentHandler) GetConfiguration(c echo.Context, req *GetConfigurationRequest) (map[string]any, error) {
	hasTag := c.QueryParams().Has("tag")

	doc, err := h.queryBuilder.Configuration(c.Request().Context(), req.Scope, req.Tag, hasTag)
	if hasTag {
		return found(doc, err, "configuration for scope %q and tag %q not found", req.Scope, req.Tag)
	}
	return found(doc, err, "configuration for scope %q not found", req.Scope)
}

// found turns an absent document into a 404 and a present one into its
// JSON form.
func found(doc document.Document, err error, format string, args ...any) (map[string]any, error) {
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf(format, args...), true, nil)
	}
	return doc.Map(), nil
}
