package validation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/querybuilder/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupRequest struct {
	Scope string   `query:"scope" validate:"max=8"`
	Keys  []string `query:"key" validate:"max=2,dive,required"`
}

func (r *lookupRequest) Validate() error {
	return Validator().Struct(r)
}

type customRequest struct{}

func (r *customRequest) Validate() error {
	return CustomValidationErrors{{Field: "scope", Message: "is reserved"}}
}

func bind(t *testing.T, target string, payload Validatable) error {
	t.Helper()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
	return BindAndValidate(c, payload)
}

func TestBindAndValidate(t *testing.T) {
	req := &lookupRequest{}
	require.NoError(t, bind(t, "/?scope=eu&key=a&key=b", req))

	assert.Equal(t, "eu", req.Scope)
	assert.Equal(t, []string{"a", "b"}, req.Keys)
}

func TestBindAndValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		field  string
		msg    string
	}{
		{name: "string too long", target: "/?scope=0123456789", field: "scope", msg: "must not exceed 8 characters"},
		{name: "too many items", target: "/?key=a&key=b&key=c", field: "keys", msg: "must not contain more than 2 items"},
		{name: "empty item", target: "/?key=", field: "keys[0]", msg: "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bind(t, tt.target, &lookupRequest{})

			var httpErr *errs.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Status)
			require.Len(t, httpErr.Errors, 1)
			assert.Equal(t, tt.field, httpErr.Errors[0].Field)
			assert.Equal(t, tt.msg, httpErr.Errors[0].Error)
		})
	}
}

func TestBindAndValidateCustomErrors(t *testing.T) {
	err := bind(t, "/", &customRequest{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, []errs.FieldError{{Field: "scope", Error: "is reserved"}}, httpErr.Errors)
}
