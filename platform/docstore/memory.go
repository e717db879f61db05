package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryDoc struct {
	data      []byte
	createdAt time.Time
	seq       uint64
}

// MemoryStore keeps documents in process memory. It backs STORE_DRIVER=memory
// and the service tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryDoc
	sequences   map[string]int64
	inserts     uint64
	now         func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]memoryDoc),
		sequences:   make(map[string]int64),
		now:         time.Now,
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(doc.data), nil
}

func (s *MemoryStore) List(ctx context.Context, collection string, q Query) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type row struct {
		doc  memoryDoc
		name string
	}
	rows := make([]row, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		var decoded map[string]any
		if err := json.Unmarshal(doc.data, &decoded); err != nil {
			return nil, fmt.Errorf("decode stored document: %w", err)
		}
		if !matches(decoded, q.Where) {
			continue
		}
		name, _ := decoded["name"].(string)
		rows = append(rows, row{doc: doc, name: name})
	}

	switch q.OrderBy {
	case OrderByNameAsc:
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].name != rows[j].name {
				return rows[i].name < rows[j].name
			}
			return rows[i].doc.seq < rows[j].doc.seq
		})
	case OrderByCreatedDesc:
		sort.SliceStable(rows, func(i, j int) bool {
			if !rows[i].doc.createdAt.Equal(rows[j].doc.createdAt) {
				return rows[i].doc.createdAt.After(rows[j].doc.createdAt)
			}
			return rows[i].doc.seq > rows[j].doc.seq
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].doc.seq < rows[j].doc.seq })
	}

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	out := make([][]byte, 0, len(rows))
	for _, r := range rows {
		out = append(out, bytes.Clone(r.doc.data))
	}
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("invalid json document")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]memoryDoc)
		s.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		return ErrAlreadyExists
	}
	s.inserts++
	docs[id] = memoryDoc{data: bytes.Clone(data), createdAt: s.now(), seq: s.inserts}
	return nil
}

func (s *MemoryStore) Replace(ctx context.Context, collection, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("invalid json document")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	doc.data = bytes.Clone(data)
	s.collections[collection][id] = doc
	return nil
}

func (s *MemoryStore) Merge(ctx context.Context, collection, id string, patch []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	var current map[string]json.RawMessage
	if err := json.Unmarshal(doc.data, &current); err != nil {
		return fmt.Errorf("decode stored document: %w", err)
	}
	for k, v := range fields {
		current[k] = v
	}
	merged, err := json.Marshal(current)
	if err != nil {
		return err
	}
	doc.data = merged
	s.collections[collection][id] = doc
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) NextSequence(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[name]++
	return s.sequences[name], nil
}

func matches(doc map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := lookup(doc, splitPath(f.Path))
		if !ok {
			return false
		}
		if s, isString := v.(string); !isString || s != f.Value {
			return false
		}
	}
	return true
}

func lookup(doc map[string]any, path []string) (any, bool) {
	var cur any = doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
