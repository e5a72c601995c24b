package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/querybuilder/internal/config"
	"github.com/deppfellow/querybuilder/internal/document"
	"github.com/deppfellow/querybuilder/internal/handler"
	"github.com/deppfellow/querybuilder/internal/logger"
	"github.com/deppfellow/querybuilder/internal/middleware"
	"github.com/deppfellow/querybuilder/internal/repository"
	"github.com/deppfellow/querybuilder/internal/server"
	"github.com/deppfellow/querybuilder/internal/service"
	"github.com/deppfellow/querybuilder/internal/store"
	"github.com/deppfellow/querybuilder/internal/store/storetest"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testApp struct {
	router *echo.Echo
	mem    *storetest.Memory
	logs   *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "0",
			CORSAllowedOrigins: []string{"*"},
		},
		Store:         config.StoreConfig{Driver: config.DriverMongo, QueryTimeout: 5},
		Observability: config.DefaultObservabilityConfig(),
	}

	logs := &bytes.Buffer{}
	log := zerolog.New(logs).Level(zerolog.DebugLevel)
	mem := storetest.NewMemory()

	srv := server.NewWithStore(cfg, &log, &logger.LoggerService{}, mem)
	services, err := service.NewService(srv, repository.NewRepositories(srv))
	require.NoError(t, err)

	return &testApp{
		router: NewRouter(srv, handler.NewHandlers(srv, services)),
		mem:    mem,
		logs:   logs,
	}
}

func (a *testApp) get(t *testing.T, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func seedOrganization(mem *storetest.Memory) primitive.ObjectID {
	id := primitive.NewObjectID()
	mem.Insert(store.OrganizationCollection, document.Document{
		{Key: "_id", Value: id},
		{Key: "name", Value: "acme"},
		{Key: "adLimits", Value: bson.D{
			{Key: "maxAdsPerDay", Value: int32(10)},
			{Key: "enabled", Value: true},
		}},
		{Key: "adLimitsPerApp", Value: bson.A{
			bson.D{
				{Key: "sourcePackage", Value: "com.example.game"},
				{Key: "adLimits", Value: bson.D{
					{Key: "maxAdsPerDay", Value: int32(3)},
					{Key: "placement", Value: "interstitial"},
				}},
			},
		}},
	})
	return id
}

func TestGetOrganization(t *testing.T) {
	app := newTestApp(t)
	id := seedOrganization(app.mem)

	rec, body := app.get(t, "/api/v1/organizations/"+id.Hex())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.Hex(), body["_id"])
	assert.Equal(t, "acme", body["name"])
	assert.Equal(t, map[string]any{"maxAdsPerDay": float64(10), "enabled": true}, body["adLimits"])
}

func TestDocumentRoutesReturnNotFoundForUnknownIDs(t *testing.T) {
	app := newTestApp(t)
	id := primitive.NewObjectID().Hex()

	for _, path := range []string{"campaigns", "audience-clusters", "installed-apps", "organizations"} {
		rec, body := app.get(t, fmt.Sprintf("/api/v1/%s/%s", path, id))

		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "NOT_FOUND", body["code"], path)
		assert.Equal(t, true, body["override"], path)
	}
}

func TestDocumentRoutesRejectInvalidIDs(t *testing.T) {
	app := newTestApp(t)

	for _, target := range []string{
		"/api/v1/campaigns/not-an-object-id",
		"/api/v1/installed-apps/%20",
	} {
		rec, body := app.get(t, target)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
		assert.Equal(t, "UNPROCESSABLE_ENTITY", body["code"], target)
	}

	assert.Empty(t, app.mem.Queries())
}

func TestGetCampaign(t *testing.T) {
	app := newTestApp(t)
	id := primitive.NewObjectID()
	app.mem.Insert(store.CampaignCollection, document.Document{
		{Key: "_id", Value: id},
		{Key: "budget", Value: int64(5000)},
	})

	rec, body := app.get(t, "/api/v1/campaigns/"+id.Hex())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5000), body["budget"])

	queries := app.mem.Queries()
	require.Len(t, queries, 1)
	assert.Equal(t, store.CampaignCollection, queries[0].Collection)
}

func TestGetConfiguration(t *testing.T) {
	app := newTestApp(t)
	app.mem.Insert(store.ConfigurationCollection,
		document.Document{{Key: "scope", Value: "bidding"}, {Key: "floor", Value: int32(1)}},
		document.Document{{Key: "scope", Value: "bidding"}, {Key: "tag", Value: "eu"}, {Key: "floor", Value: int32(2)}},
	)

	t.Run("by scope", func(t *testing.T) {
		rec, body := app.get(t, "/api/v1/configurations?scope=bidding")
		require.Equal(t, http.StatusOK, rec.Code)
		// Both documents match the scope; the last one wins.
		assert.Equal(t, float64(2), body["floor"])
	})

	t.Run("by scope and tag", func(t *testing.T) {
		rec, body := app.get(t, "/api/v1/configurations?scope=bidding&tag=eu")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "eu", body["tag"])
	})

	t.Run("empty tag is still a tag", func(t *testing.T) {
		rec, _ := app.get(t, "/api/v1/configurations?scope=bidding&tag=")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("blank scope", func(t *testing.T) {
		rec, _ := app.get(t, "/api/v1/configurations?scope=")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestGetAdLimits(t *testing.T) {
	app := newTestApp(t)
	id := seedOrganization(app.mem).Hex()

	t.Run("per app limits win", func(t *testing.T) {
		rec, body := app.get(t, "/api/v1/organizations/"+id+
			"/ad-limits?target_package=com.example.game&int=maxAdsPerDay&bool=enabled&string=placement")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "per_app", body["source"])
		assert.Equal(t, true, body["has_ad_limits"])
		assert.Equal(t, map[string]any{
			"maxAdsPerDay": map[string]any{"has_key": true, "value": float64(3)},
			// Present in the global set only, so it is not read.
			"enabled":   map[string]any{"has_key": true, "value": false},
			"placement": map[string]any{"has_key": true, "value": "interstitial"},
		}, body["limits"])
	})

	t.Run("global limits without a single target", func(t *testing.T) {
		rec, body := app.get(t, "/api/v1/organizations/"+id+
			"/ad-limits?target_package=com.example.game&target_package=com.other&int=maxAdsPerDay&bool=enabled")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "global", body["source"])
		assert.Equal(t, map[string]any{
			"maxAdsPerDay": map[string]any{"has_key": true, "value": float64(10)},
			"enabled":      map[string]any{"has_key": true, "value": true},
		}, body["limits"])
	})

	t.Run("unknown organization", func(t *testing.T) {
		rec, _ := app.get(t, "/api/v1/organizations/"+primitive.NewObjectID().Hex()+"/ad-limits")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty key", func(t *testing.T) {
		rec, body := app.get(t, "/api/v1/organizations/"+id+"/ad-limits?int=")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, body["errors"])
	})
}

func TestStoreFailuresMapToServiceUnavailable(t *testing.T) {
	app := newTestApp(t)
	app.mem.FindErr = fmt.Errorf("find: %w", context.DeadlineExceeded)

	rec, body := app.get(t, "/api/v1/organizations/"+primitive.NewObjectID().Hex())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", body["code"])
	require.IsType(t, map[string]any{}, body["action"])
	assert.Equal(t, "retry", body["action"].(map[string]any)["type"])
}

func TestUnknownStoreErrorsAreInternal(t *testing.T) {
	app := newTestApp(t)
	app.mem.CursorErr = fmt.Errorf("corrupt cursor")

	rec, body := app.get(t, "/api/v1/campaigns/"+primitive.NewObjectID().Hex())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body["message"])
	assert.NotContains(t, rec.Body.String(), "corrupt cursor")
}

func TestStatus(t *testing.T) {
	app := newTestApp(t)

	rec, body := app.get(t, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	app.mem.PingErr = fmt.Errorf("connection refused")

	rec, body = app.get(t, "/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	rec, body := app.get(t, "/api/v1/unknown")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", body["message"])
}

func TestRequestIDIsPropagated(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, app.logs.String(), `"request_id":"req-123"`)
}
