// Package memstore is an in-memory target store.
//
// It backs dry runs (STORE_DRIVER=memory or --dry-run) and tests. FailWith
// lets tests inject a store error for chosen writes.
package memstore

import (
	"context"
	"sync"

	"github.com/JonMunkholm/cardmigrate/internal/core"
	"github.com/JonMunkholm/cardmigrate/internal/store"
	"github.com/google/uuid"
)

func init() {
	store.Register(store.Driver{
		Name:        "memory",
		Description: "In-memory store; nothing is persisted (dry run)",
		Open: func(_ context.Context, opts store.Options) (store.Handle, error) {
			return New(opts.Collection), nil
		},
	})
}

// Op identifies the kind of write a FailFunc is asked about.
type Op string

const (
	OpUpsert Op = "upsert"
	OpInsert Op = "insert"
)

// FailFunc decides whether a write should fail. id is empty for inserts.
type FailFunc func(op Op, id string, doc core.StoredDocument) error

// Store keeps documents in a map keyed by ID.
type Store struct {
	mu         sync.Mutex
	collection string
	docs       map[string]core.StoredDocument
	order      []string
	writes     int
	fail       FailFunc
}

// New returns an empty store for the named collection.
func New(collection string) *Store {
	if collection == "" {
		collection = core.DefaultCollection
	}
	return &Store{
		collection: collection,
		docs:       make(map[string]core.StoredDocument),
	}
}

// FailWith installs fn to inject errors into subsequent writes.
func (s *Store) FailWith(fn FailFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fn
}

// Upsert replaces the document with this ID or creates it.
func (s *Store) Upsert(_ context.Context, id string, doc core.StoredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	if s.fail != nil {
		if err := s.fail(OpUpsert, id, doc); err != nil {
			return err
		}
	}

	if _, exists := s.docs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.docs[id] = doc
	return nil
}

// Insert stores doc under a fresh UUID.
func (s *Store) Insert(_ context.Context, doc core.StoredDocument) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	if s.fail != nil {
		if err := s.fail(OpInsert, "", doc); err != nil {
			return "", err
		}
	}

	id := uuid.NewString()
	s.order = append(s.order, id)
	s.docs[id] = doc
	return id, nil
}

// Get returns the document stored under id.
func (s *Store) Get(id string) (core.StoredDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// IDs returns stored IDs in first-write order.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Writes returns how many writes were attempted, including failed ones.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Target returns the collection name.
func (s *Store) Target() string {
	return s.collection
}

// Close is a no-op.
func (s *Store) Close(context.Context) error {
	return nil
}
