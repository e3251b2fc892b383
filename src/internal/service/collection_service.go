package service

import (
	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/errors"
	"github.com/chuckhq/chuck-hq/src/internal/identity"
	"github.com/chuckhq/chuck-hq/src/internal/log"
	"github.com/chuckhq/chuck-hq/src/internal/storage"
)

// CollectionService manages items of collection resources.
type CollectionService struct {
	store *storage.Store
	ids   identity.Generator
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store *storage.Store, ids identity.Generator) *CollectionService {
	return &CollectionService{store: store, ids: ids}
}

// List returns every item of the collection as stored.
func (s *CollectionService) List(res *config.ResourceConfig) storage.Collection {
	items, _ := s.store.ReadCollection(res.File)
	return items
}

// Create appends body as a new item. The body's own id is kept when it is a
// non-empty string or a number; otherwise a fresh id is generated. Creating an
// item whose id already exists replaces that item in place.
func (s *CollectionService) Create(res *config.ResourceConfig, body storage.Item) (storage.Item, error) {
	unlock := s.store.Lock(res.File)
	defer unlock()

	items, _ := s.store.ReadCollection(res.File)

	item := body.Clone()
	id := storage.IDString(body[storage.IDField])
	if id == "" {
		id = s.ids.Next(items.Has)
	}
	item[storage.IDField] = id

	if idx := items.IndexOf(id); idx >= 0 {
		log.Debugf("[%s] Item %s already exists, replacing it", res.Route, id)
		items[idx] = item
	} else {
		items = append(items, item)
	}

	if err := s.store.Write(res.File, items); err != nil {
		return nil, err
	}
	return item, nil
}

// Update merges patch over the item with the given id. The path id always
// wins over an id inside patch.
func (s *CollectionService) Update(res *config.ResourceConfig, id string, patch storage.Item) (storage.Item, error) {
	unlock := s.store.Lock(res.File)
	defer unlock()

	items, _ := s.store.ReadCollection(res.File)

	idx := items.IndexOf(id)
	if idx == -1 {
		return nil, errors.NewNotFoundError(res.Route, id)
	}

	updated := items[idx].Merge(patch)
	updated[storage.IDField] = id
	items[idx] = updated

	if err := s.store.Write(res.File, items); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the item with the given id.
func (s *CollectionService) Delete(res *config.ResourceConfig, id string) error {
	unlock := s.store.Lock(res.File)
	defer unlock()

	items, _ := s.store.ReadCollection(res.File)

	remaining := items.Without(id)
	if len(remaining) == len(items) {
		return errors.NewNotFoundError(res.Route, id)
	}

	return s.store.Write(res.File, remaining)
}
