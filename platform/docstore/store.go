// Package docstore provides a small document store: named collections of JSON
// documents addressed by id, with equality filters and two fixed orderings.
// This is part of the platform layer and contains no business logic.
package docstore

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a document id does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// ErrAlreadyExists is returned by Create when the id is taken.
var ErrAlreadyExists = errors.New("document already exists")

// Order selects how List sorts documents.
type Order int

const (
	// OrderNone leaves the order unspecified.
	OrderNone Order = iota
	// OrderByNameAsc sorts by the top-level "name" field, ascending.
	OrderByNameAsc
	// OrderByCreatedDesc sorts newest first by insertion time.
	OrderByCreatedDesc
)

// Filter matches documents holding the string Value at Path. Path is dot
// separated, e.g. "shipper.userId". Non-string values never match.
type Filter struct {
	Path  string
	Value string
}

// Query narrows and orders a List call.
type Query struct {
	Where   []Filter
	OrderBy Order
	Limit   int
}

// Eq is a convenience constructor for a Filter.
func Eq(path, value string) Filter {
	return Filter{Path: path, Value: value}
}

// Store persists raw JSON documents. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
	List(ctx context.Context, collection string, q Query) ([][]byte, error)
	// Create inserts a new document. Returns ErrAlreadyExists on id collision.
	Create(ctx context.Context, collection, id string, data []byte) error
	// Replace overwrites a whole document. Returns ErrNotFound if absent.
	Replace(ctx context.Context, collection, id string, data []byte) error
	// Merge applies a top-level key merge. Returns ErrNotFound if absent.
	Merge(ctx context.Context, collection, id string, patch []byte) error
	// Delete hard-deletes a document. Returns ErrNotFound if absent.
	Delete(ctx context.Context, collection, id string) error
	// NextSequence atomically increments and returns the named counter.
	// The first call for a name returns 1.
	NextSequence(ctx context.Context, name string) (int64, error)
	Ping(ctx context.Context) error
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}
