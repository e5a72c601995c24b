// Package validation contains the logic for validating request data.
//
// It uses the `validator` library to enforce rules defined in struct tags
// and converts validation errors into field errors the client can
// understand. Identifier semantics (blank, malformed ObjectIDs) are left
// to the repository layer.
package validation
