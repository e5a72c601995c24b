package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/querybuilder/internal/document"
	"github.com/deppfellow/querybuilder/internal/errs"
	"github.com/deppfellow/querybuilder/internal/store"
	"go.mongodb.org/mongo-driver/bson"
)

// FetchDocument runs filter against collection and returns the matching
// document, or errs.ErrNotFound when nothing matches.
//
// Filters are always on a unique field, so at most one document is
// expected. The cursor is still drained and the last document seen wins.
func FetchDocument(ctx context.Context, s store.Store, filter store.Filter, collection string) (document.Document, error) {
	cursor, err := s.Find(ctx, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var (
		found   document.Document
		matched bool
	)
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", collection, err)
		}
		found = document.Document(doc)
		matched = true
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}

	if !matched {
		return nil, errs.ErrNotFound
	}
	return found, nil
}
