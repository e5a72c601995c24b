package handler

import (
	"fmt"

	"github.com/deppfellow/querybuilder/internal/adlimits"
	"github.com/deppfellow/querybuilder/internal/errs"
	"github.com/deppfellow/querybuilder/internal/server"
	"github.com/deppfellow/querybuilder/internal/service"
	"github.com/deppfellow/querybuilder/internal/validation"
	"github.com/labstack/echo/v4"
)

// GetAdLimitsRequest resolves the ad limits of an organization for the
// target packages of a request. Keys are listed under the type they are
// expected to hold.
type GetAdLimitsRequest struct {
	OrganizationID string   `param:"id" validate:"max=64"`
	TargetPackages []string `query:"target_package" validate:"max=50,dive,max=256"`
	BoolKeys       []string `query:"bool" validate:"max=50,dive,required,printascii"`
	IntKeys        []string `query:"int" validate:"max=50,dive,required,printascii"`
	StringKeys     []string `query:"string" validate:"max=50,dive,required,printascii"`
}

func (r *GetAdLimitsRequest) Validate() error {
	return validation.Validator().Struct(r)
}

func NewGetAdLimitsRequest() *GetAdLimitsRequest {
	return &GetAdLimitsRequest{}
}

// AdLimitValue is one key reading. Value is the getter default when the
// key is absent from the active set.
type AdLimitValue struct {
	HasKey bool `json:"has_key"`
	Value  any  `json:"value"`
}

type AdLimitsResponse struct {
	OrganizationID string                  `json:"organization_id"`
	Source         adlimits.Source         `json:"source"`
	HasAdLimits    bool                    `json:"has_ad_limits"`
	Limits         map[string]AdLimitValue `json:"limits"`
}

// AdLimitsHandler serves the resolved ad limits of an organization.
type AdLimitsHandler struct {
	Handler
	queryBuilder *service.QueryBuilderService
}

func NewAdLimitsHandler(s *server.Server, queryBuilder *service.QueryBuilderService) *AdLimitsHandler {
	return &AdLimitsHandler{
		Handler:      NewHandler(s),
		queryBuilder: queryBuilder,
	}
}

func (h *AdLimitsHandler) GetAdLimits(c echo.Context, req *GetAdLimitsRequest) (*AdLimitsResponse, error) {
	resolver, err := h.queryBuilder.AdLimits(c.Request().Context(), req.OrganizationID, req.TargetPackages)
	if err != nil {
		return nil, err
	}
	if resolver == nil {
		return nil, errs.NewNotFoundError(fmt.Sprintf("organization %s not found", req.OrganizationID), true, nil)
	}

	limits := make(map[string]AdLimitValue, len(req.BoolKeys)+len(req.IntKeys)+len(req.StringKeys))
	for _, key := range req.BoolKeys {
		limits[key] = AdLimitValue{HasKey: resolver.HasKey(key), Value: resolver.Bool(key)}
	}
	for _, key := range req.IntKeys {
		limits[key] = AdLimitValue{HasKey: resolver.HasKey(key), Value: resolver.Int(key)}
	}
	for _, key := range req.StringKeys {
		limits[key] = AdLimitValue{HasKey: resolver.HasKey(key), Value: resolver.String(key)}
	}

	return &AdLimitsResponse{
		OrganizationID: req.OrganizationID,
		Source:         resolver.Source(),
		HasAdLimits:    resolver.HasAdLimits(),
		Limits:         limits,
	}, nil
}
