// Package tasksmemstore keeps the serialized task document in memory.
package tasksmemstore

import (
	"context"
	"slices"
	"sync"

	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
)

type Store struct {
	mu      sync.Mutex
	doc     []byte
	saveErr error
}

func NewStore() *Store {
	return &Store{}
}

// NewStoreWithDocument starts from raw persisted bytes.
func NewStoreWithDocument(doc []byte) *Store {
	return &Store{doc: slices.Clone(doc)}
}

func (s *Store) Load(ctx context.Context) ([]tasksrepo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tasksrepo.DecodeDocument(s.doc)
}

func (s *Store) Save(ctx context.Context, tasks []tasksrepo.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	doc, err := tasksrepo.EncodeDocument(tasks)
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// Document returns the last saved bytes.
func (s *Store) Document() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.doc)
}

// FailSaves makes every Save return err until called with nil.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}
