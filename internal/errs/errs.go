// Package errs define custom error types and utilities.
//
// It holds the domain sentinels shared by the repository layer
// (ErrInvalidArgument, ErrNotFound) and the HTTPError shape that
// the API returns, so clients receive meaningful and consistent
// error messages.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a blank or malformed identifier/scope.
	// It is raised before any store access.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound reports that a lookup matched no document. It never
	// leaves the repository package: wrappers turn it into an absent result.
	ErrNotFound = errors.New("document not found")
)

// InvalidArgument returns an error wrapping ErrInvalidArgument with a
// formatted message. A trailing %w verb in format is honoured, so parse
// errors can be kept in the chain.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrInvalidArgument, fmt.Errorf(format, args...))
}
