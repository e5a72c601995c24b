// Package handler is the HTTP layer of the service, the first stop after
// the router.
//
// It binds and validates requests through the validation package, calls
// the query builder service and writes JSON responses. Errors are left to
// the global error handler.
package handler
