// Package repository handles all interactions with the document store.
//
// It builds the equality filters for every lookup the service needs,
// validates identifiers before touching the store, and turns "no matching
// document" into an absent result so callers never see it as a failure.
package repository
