// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/deppfellow/querybuilder/internal/document"
	"github.com/deppfellow/querybuilder/internal/store"
	"go.mongodb.org/mongo-driver/bson"
)

// Memory keeps documents per collection in insertion order and records
// every Find it serves.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]document.Document
	queries     []Query

	// FindErr, when set, is returned by every Find.
	FindErr error
	// CursorErr, when set, is reported by cursors after the last document.
	CursorErr error
	// PingErr is returned by Ping.
	PingErr error

	closed bool
}

// Query is one recorded Find call.
type Query struct {
	Collection string
	Filter     store.Filter
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]document.Document)}
}

// Insert appends documents to collection.
func (m *Memory) Insert(collection string, docs ...document.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], docs...)
}

// Queries returns the Find calls served so far.
func (m *Memory) Queries() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.queries...)
}

func (m *Memory) Find(_ context.Context, collection string, filter store.Filter) (store.Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, Query{Collection: collection, Filter: filter})
	if m.FindErr != nil {
		return nil, m.FindErr
	}

	var matched []document.Document
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			matched = append(matched, doc)
		}
	}
	return &cursor{docs: matched, pos: -1, err: m.CursorErr}, nil
}

func (m *Memory) Ping(context.Context) error {
	return m.PingErr
}

func (m *Memory) Name() string {
	return "memory"
}

// Close marks the store closed so tests can assert the server released it.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func matches(doc document.Document, filter store.Filter) bool {
	for _, cond := range filter {
		v, ok := doc.Lookup(cond.Key)
		if !ok || !reflect.DeepEqual(v, cond.Value) {
			return false
		}
	}
	return true
}

type cursor struct {
	docs   []document.Document
	pos    int
	err    error
	closed bool
}

func (c *cursor) Next(context.Context) bool {
	if c.closed || c.pos+1 >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *cursor) Decode(val any) error {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return errors.New("storetest: no current document")
	}
	raw, err := bson.Marshal(bson.D(c.docs[c.pos]))
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, val)
}

func (c *cursor) Err() error {
	if c.pos+1 >= len(c.docs) {
		return c.err
	}
	return nil
}

func (c *cursor) Close(context.Context) error {
	c.closed = true
	return nil
}
