// Package memstore is a thread-safe in-memory docstore.Store.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

func New() *Store {
	return &Store{collections: make(map[string]map[string]map[string]any)}
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return &docstore.Document{Collection: collection, ID: id, Fields: docstore.CloneFields(fields)}, nil
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]docstore.Document, 0)
	for id, fields := range s.collections[collection] {
		doc := docstore.Document{Collection: collection, ID: id, Fields: fields}
		if !docstore.Matches(&doc, q.Filters) {
			continue
		}
		doc.Fields = docstore.CloneFields(fields)
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if q.OrderBy != "" {
			c, ok := docstore.Compare(docs[i].Fields[q.OrderBy], docs[j].Fields[q.OrderBy])
			if ok && c != 0 {
				return c < 0
			}
		}
		return docs[i].ID < docs[j].ID
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *Store) Commit(ctx context.Context, writes []docstore.Write, preconditions []docstore.Precondition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := docstore.ValidateWrites(writes); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range preconditions {
		if !p.Holds(s.lookup(p.Collection, p.ID)) {
			return fmt.Errorf("%w: %s/%s", docstore.ErrConflict, p.Collection, p.ID)
		}
	}

	// Verify every write against the pre-commit state before touching anything.
	pending := make(map[string]bool)
	for _, w := range writes {
		key := w.Collection + "/" + w.ID
		exists := s.lookup(w.Collection, w.ID) != nil || pending[key]
		switch w.Op {
		case docstore.OpCreate:
			if exists {
				return fmt.Errorf("%w: %s already exists", docstore.ErrConflict, key)
			}
		case docstore.OpUpdate:
			if !exists {
				return fmt.Errorf("%w: %s does not exist", docstore.ErrConflict, key)
			}
		}
		pending[key] = true
	}

	for _, w := range writes {
		docs, ok := s.collections[w.Collection]
		if !ok {
			docs = make(map[string]map[string]any)
			s.collections[w.Collection] = docs
		}
		switch w.Op {
		case docstore.OpCreate, docstore.OpSet:
			docs[w.ID] = docstore.CloneFields(w.Fields)
		case docstore.OpUpdate:
			current := docs[w.ID]
			for k, v := range w.Fields {
				current[k] = docstore.Normalize(v)
			}
		}
	}
	return nil
}

func (s *Store) lookup(collection, id string) *docstore.Document {
	fields, ok := s.collections[collection][id]
	if !ok {
		return nil
	}
	return &docstore.Document{Collection: collection, ID: id, Fields: fields}
}

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}
