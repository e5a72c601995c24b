package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/querybuilder/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name string `query:"name" validate:"max=5"`
}

func (r *echoRequest) Validate() error {
	return validation.Validator().Struct(r)
}

func TestHandleWritesJSONWithStatus(t *testing.T) {
	var seen []*echoRequest
	h := Handle(Handler{}, func(c echo.Context, req *echoRequest) (map[string]string, error) {
		seen = append(seen, req)
		return map[string]string{"name": req.Name}, nil
	}, http.StatusAccepted, func() *echoRequest { return &echoRequest{} })

	e := echo.New()
	for _, name := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?name="+name, nil), rec)

		require.NoError(t, h(c))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"name":"`+name+`"}`, rec.Body.String())
	}

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1], "each request binds into its own payload")
}

func TestHandleReturnsValidationErrors(t *testing.T) {
	called := false
	h := Handle(Handler{}, func(c echo.Context, req *echoRequest) (map[string]string, error) {
		called = true
		return nil, nil
	}, http.StatusOK, func() *echoRequest { return &echoRequest{} })

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/?name=toolong", nil), rec)

	assert.Error(t, h(c))
	assert.False(t, called)
	assert.Zero(t, rec.Body.Len(), "the global error handler writes the response")
}
