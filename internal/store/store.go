// Package store describes the document store this service reads from.
//
// The repository layer depends only on the interfaces below: query a
// collection with an equality filter and iterate the results. Concrete
// backends live in the database package.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Collections read by the repository layer.
const (
	CampaignCollection        = "campaign"
	AudienceClusterCollection = "audienceCluster"
	InstalledAppsCollection   = "installedApps"
	OrganizationCollection    = "organization"
	ConfigurationCollection   = "configurations"
)

// Filter is a conjunction of equality conditions, field = value.
type Filter = bson.D

// Eq builds a Filter from field/value entries, kept in order.
func Eq(elems ...bson.E) Filter {
	return Filter(elems)
}

// Cursor iterates the documents matched by a Find. *mongo.Cursor satisfies
// it as is.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(val any) error
	Err() error
	Close(ctx context.Context) error
}

// Store is a document store bound to one database.
type Store interface {
	// Find returns a cursor over every document of collection matching
	// filter. No ordering is requested.
	Find(ctx context.Context, collection string, filter Filter) (Cursor, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and health checks.
	Name() string
}
