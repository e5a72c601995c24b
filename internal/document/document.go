// Package document defines the generic, schema-less document returned by
// every store lookup and the typed accessors used to read it.
//
// A Document keeps the field order of the store. Reads are typed on access:
// each accessor returns the value or an error wrapping ErrMissingKey or
// ErrWrongType, never panics.
package document

import (
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrMissingKey is returned when the requested field is absent.
	ErrMissingKey = errors.New("missing key")

	// ErrWrongType is returned when the field exists with another type.
	ErrWrongType = errors.New("wrong type")
)

// Document is an ordered field name -> value mapping.
type Document bson.D

// Lookup returns the value stored under key. When the key appears more
// than once the first occurrence wins, as in the store.
func (d Document) Lookup(key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present, whatever its value.
func (d Document) Has(key string) bool {
	_, ok := d.Lookup(key)
	return ok
}

// Keys returns the field names in store order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for _, e := range d {
		keys = append(keys, e.Key)
	}
	return keys
}

// Map converts the document into a plain map, recursively, for JSON
// responses.
func (d Document) Map() map[string]any {
	m := make(map[string]any, len(d))
	for _, e := range d {
		m[e.Key] = plain(e.Value)
	}
	return m
}

func (d Document) value(key string) (any, error) {
	v, ok := d.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return v, nil
}

func wrongType(key string, want string, v any) error {
	return fmt.Errorf("%w: %s is %T, not %s", ErrWrongType, key, v, want)
}

// Bool reads a boolean field.
func (d Document) Bool(key string) (bool, error) {
	v, err := d.value(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(key, "bool", v)
	}
	return b, nil
}

// Int reads an integer field. Both 32 and 64 bit integers are accepted as
// long as they fit in an int; floating point values are rejected.
func (d Document) Int(key string) (int, error) {
	v, err := d.value(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int32:
		return int(n), nil
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, fmt.Errorf("%w: %s overflows int", ErrWrongType, key)
		}
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, wrongType(key, "int", v)
	}
}

// String reads a string field.
func (d Document) String(key string) (string, error) {
	v, err := d.value(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(key, "string", v)
	}
	return s, nil
}

// Document reads a nested document field.
func (d Document) Document(key string) (Document, error) {
	v, err := d.value(key)
	if err != nil {
		return nil, err
	}
	nested, ok := asDocument(v)
	if !ok {
		return nil, wrongType(key, "document", v)
	}
	return nested, nil
}

// Documents reads a list of documents. Every element must be a document.
func (d Document) Documents(key string) ([]Document, error) {
	v, err := d.value(key)
	if err != nil {
		return nil, err
	}

	var items []any
	switch list := v.(type) {
	case bson.A:
		items = list
	case []any:
		items = list
	case []bson.D:
		out := make([]Document, len(list))
		for i, item := range list {
			out[i] = Document(item)
		}
		return out, nil
	case []Document:
		return list, nil
	default:
		return nil, wrongType(key, "list of documents", v)
	}

	out := make([]Document, 0, len(items))
	for i, item := range items {
		nested, ok := asDocument(item)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is %T, not document", ErrWrongType, key, i, item)
		}
		out = append(out, nested)
	}
	return out, nil
}

// asDocument normalizes the nested document forms a decoder may produce.
// Unordered maps lose their order; that only matters for Keys. An empty
// nested document is never returned as nil.
func asDocument(v any) (Document, bool) {
	switch n := v.(type) {
	case Document:
		if n == nil {
			return Document{}, true
		}
		return n, true
	case bson.D:
		if n == nil {
			return Document{}, true
		}
		return Document(n), true
	case bson.M:
		return fromMap(n), true
	case map[string]any:
		return fromMap(n), true
	default:
		return nil, false
	}
}

func fromMap(m map[string]any) Document {
	d := make(Document, 0, len(m))
	for k, v := range m {
		d = append(d, bson.E{Key: k, Value: v})
	}
	return d
}

func plain(v any) any {
	if nested, ok := asDocument(v); ok {
		return nested.Map()
	}
	switch list := v.(type) {
	case bson.A:
		return plainList(list)
	case []any:
		return plainList(list)
	}
	return v
}

func plainList(list []any) []any {
	out := make([]any, len(list))
	for i, item := range list {
		out[i] = plain(item)
	}
	return out
}
