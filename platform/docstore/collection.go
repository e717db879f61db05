package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection is a typed view over one collection of a Store. T must
// round-trip through encoding/json.
type Collection[T any] struct {
	store Store
	name  string
}

// NewCollection binds name in store to the document type T.
func NewCollection[T any](store Store, name string) Collection[T] {
	return Collection[T]{store: store, name: name}
}

// Name returns the collection name.
func (c Collection[T]) Name() string { return c.name }

// Get loads and decodes one document.
func (c Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	raw, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return out, nil
}

// List loads and decodes all documents matching q.
func (c Collection[T]) List(ctx context.Context, q Query) ([]T, error) {
	raws, err := c.store.List(ctx, c.name, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// Create encodes and inserts doc under id.
func (c Collection[T]) Create(ctx context.Context, id string, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	return c.store.Create(ctx, c.name, id, raw)
}

// Replace encodes doc and overwrites the stored document.
func (c Collection[T]) Replace(ctx context.Context, id string, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	return c.store.Replace(ctx, c.name, id, raw)
}

// Merge applies a top-level partial update.
func (c Collection[T]) Merge(ctx context.Context, id string, patch map[string]any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode %s patch: %w", c.name, err)
	}
	return c.store.Merge(ctx, c.name, id, raw)
}

// Delete removes the document.
func (c Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}
