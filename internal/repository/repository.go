// Package repository holds the session-scoped, in-memory state: the ordered
// document store and the append-only conversation log.
package repository

import (
	"errors"
	"sync"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

// ErrDuplicateID is returned when a document with the same ID is already stored.
var ErrDuplicateID = errors.New("document id already exists")

type DocumentStore interface {
	Add(doc models.Document) error
	Remove(id string) bool
	Clear()
	Get(id string) (models.Document, bool)
	List() []models.Document
	Changed() <-chan struct{}
}

type documentStore struct {
	mu      sync.RWMutex
	docs    []models.Document
	changed chan struct{}
}

func NewDocumentStore() DocumentStore {
	return &documentStore{
		changed: make(chan struct{}, 1),
	}
}

// Add appends doc; insertion order is display order.
func (s *documentStore) Add(doc models.Document) error {
	s.mu.Lock()
	for _, d := range s.docs {
		if d.ID == doc.ID {
			s.mu.Unlock()
			return ErrDuplicateID
		}
	}
	s.docs = append(s.docs, doc)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Remove deletes the document with the given id. It reports whether a
// document was removed; an unknown id is not an error.
func (s *documentStore) Remove(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, d := range s.docs {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.docs = append(s.docs[:idx:idx], s.docs[idx+1:]...)
	s.mu.Unlock()

	s.notify()
	return true
}

func (s *documentStore) Clear() {
	s.mu.Lock()
	s.docs = nil
	s.mu.Unlock()

	s.notify()
}

func (s *documentStore) Get(id string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.docs {
		if d.ID == id {
			return d, true
		}
	}
	return models.Document{}, false
}

// List returns a snapshot in insertion order.
func (s *documentStore) List() []models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Changed delivers a signal after mutations. Signals coalesce: a reader that
// falls behind sees one pending signal, not one per mutation.
func (s *documentStore) Changed() <-chan struct{} {
	return s.changed
}

func (s *documentStore) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
