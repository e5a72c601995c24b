// Package storeerr handles document store driver errors.
//
// It classifies errors coming from the MongoDB and pgx drivers, and the
// repository sentinels, into HTTPErrors the API can return without leaking
// driver details.
package storeerr
