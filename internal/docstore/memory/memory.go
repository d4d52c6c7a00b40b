// Package memory provides the in-memory document store used by tests and
// local development. It intentionally favors clarity over performance.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ahmadsobohhh/UnityPlatform/internal/docstore"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
)

// Store keeps every document as its decoded JSON object. Field comparisons
// therefore see the same representation a real JSON store would.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

var _ docstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{collections: make(map[string]map[string]map[string]any)}
}

func (s *Store) Get(_ context.Context, collection, id string, dest any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return sentinel.ErrNotFound
	}
	return decode(doc, dest)
}

func (s *Store) Create(_ context.Context, collection, id string, value any) error {
	doc, err := encode(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collection(collection)
	if _, exists := col[id]; exists {
		return sentinel.ErrConflict
	}
	col[id] = doc
	return nil
}

func (s *Store) Set(_ context.Context, collection, id string, value any) error {
	doc, err := encode(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = doc
	return nil
}

func (s *Store) Merge(_ context.Context, collection, id string, fields map[string]any) error {
	patch, err := encode(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collection(collection)
	doc, ok := col[id]
	if !ok {
		doc = make(map[string]any, len(patch))
		col[id] = doc
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *Store) Query(_ context.Context, collection string, q docstore.Query, dest any) error {
	// The matched slice aliases live documents that Merge patches in place, so
	// the lock must cover the marshal at the end, not just the scan.
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []map[string]any
	for _, doc := range s.collections[collection] {
		if q.Field != "" && !jsonEqual(doc[q.Field], q.Equals) {
			continue
		}
		matched = append(matched, doc)
	}

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			less := jsonLess(matched[i][q.OrderBy], matched[j][q.OrderBy])
			if q.Desc {
				return !less && !jsonEqual(matched[i][q.OrderBy], matched[j][q.OrderBy])
			}
			return less
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	raw, err := json.Marshal(matched)
	if err != nil {
		return fmt.Errorf("marshal query result: %w", err)
	}
	return json.Unmarshal(raw, dest)
}

func (s *Store) collection(name string) map[string]map[string]any {
	col, ok := s.collections[name]
	if !ok {
		col = make(map[string]map[string]any)
		s.collections[name] = col
	}
	return col
}

func encode(value any) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	return doc, nil
}

func decode(doc map[string]any, dest any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return json.Unmarshal(raw, dest)
}

// jsonEqual compares two values through their JSON encoding so "code" fields
// stored from structs compare equal to query literals of a different Go type.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// jsonLess orders strings lexically and numbers numerically. Timestamps are
// stored as unix-millisecond numbers (docstore.Millis), so numeric order
// matches chronological order.
func jsonLess(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	case float64:
		bv, ok := b.(float64)
		return ok && av < bv
	default:
		return false
	}
}
