package router

import (
	"net/http"

	"github.com/deppfellow/querybuilder/internal/handler"
	"github.com/labstack/echo/v4"
)

func registerDocumentRoutes(v1 *echo.Group, h *handler.Handlers) {
	v1.GET("/campaigns/:id", handler.Handle(h.Documents.Handler, h.Documents.GetCampaign, http.StatusOK, handler.NewGetDocumentRequest))
	v1.GET("/audience-clusters/:id", handler.Handle(h.Documents.Handler, h.Documents.GetAudienceCluster, http.StatusOK, handler.NewGetDocumentRequest))
	v1.GET("/installed-apps/:id", handler.Handle(h.Documents.Handler, h.Documents.GetInstalledApps, http.StatusOK, handler.NewGetDocumentRequest))
	v1.GET("/organizations/:id", handler.Handle(h.Documents.Handler, h.Documents.GetOrganization, http.StatusOK, handler.NewGetDocumentRequest))
	v1.GET("/organizations/:id/ad-limits", handler.Handle(h.AdLimits.Handler, h.AdLimits.GetAdLimits, http.StatusOK, handler.NewGetAdLimitsRequest))
	v1.GET("/configurations", handler.Handle(h.Documents.Handler, h.Documents.GetConfiguration, http.StatusOK, handler.NewGetConfigurationRequest))
}
