package service

import (
	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/storage"
)

// SingletonService manages single-object resources.
type SingletonService struct {
	store *storage.Store
}

// NewSingletonService creates a new singleton service.
func NewSingletonService(store *storage.Store) *SingletonService {
	return &SingletonService{store: store}
}

// Get returns the stored document, or an empty object.
func (s *SingletonService) Get(res *config.ResourceConfig) storage.Document {
	doc, _ := s.store.ReadSingleton(res.File)
	return doc
}

// Put replaces the stored document with body and returns body unchanged.
// body is an object or an array.
func (s *SingletonService) Put(res *config.ResourceConfig, body storage.Document) (storage.Document, error) {
	if body == nil {
		body = storage.Singleton{}
	}

	unlock := s.store.Lock(res.File)
	defer unlock()

	if err := s.store.Write(res.File, body); err != nil {
		return nil, err
	}
	return body, nil
}
