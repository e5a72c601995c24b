package storeerr

import (
	"context"
	"errors"
	"strings"

	"github.com/deppfellow/querybuilder/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// retryAfter is the delay suggested to clients when the store is down.
const retryAfter = "5s"

// Unavailable reports whether err means the store could not be reached or
// did not answer in time.
func Unavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}

	if pgconn.Timeout(err) {
		return true
	}

	// SQLSTATE class 08 is "connection exception".
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && strings.HasPrefix(pgerr.Code, "08") {
		return true
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}

// HandleError converts err into an *errs.HTTPError.
//
//   - HTTPErrors pass through untouched
//   - errs.ErrInvalidArgument becomes 422 with the validation message
//   - errs.ErrNotFound becomes 404
//   - unreachable store / timeouts become 503 with a retry hint
//   - anything else becomes a generic 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		return errs.NewUnprocessableEntityError(err.Error(), true)

	case errors.Is(err, errs.ErrNotFound):
		return errs.NewNotFoundError("Document not found", false, nil)

	case Unavailable(err):
		return errs.NewServiceUnavailableError("Document store unavailable", &errs.Action{
			Type:    errs.ActionTypeRetry,
			Message: "retry the request later",
			Value:   retryAfter,
		})
	}

	return errs.NewInternalServerError()
}
