package errs

import "strings"

// FieldError is a single field-level validation failure, e.g.
//
//	{ "field": "id", "error": "must be a valid object id" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeRetry tells the client the request may succeed later.
	// Value holds the suggested delay.
	ActionTypeRetry ActionType = "retry"
)

// Action is an optional hint to the client about what to do next.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error shape returned by every API endpoint.
//
// Code is machine friendly ("UNPROCESSABLE_ENTITY"), Message is for humans,
// Status is the HTTP status. Override lets the global error handler know it
// may replace Message before it reaches the client.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`
	Action *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError. Code and Status are not
// compared.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
