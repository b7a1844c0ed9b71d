// Package memory keeps assets, attributes and mappings in process memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/plgd-dev/assethub/mapping/store"
)

type Store struct {
	mutex      sync.RWMutex
	assets     map[string]store.Asset
	attributes map[string]store.Attribute
	mappings   map[string]store.Mapping
}

func New() *Store {
	return &Store{
		assets:     make(map[string]store.Asset),
		attributes: make(map[string]store.Attribute),
		mappings:   make(map[string]store.Mapping),
	}
}

func (s *Store) GetAsset(_ context.Context, id string) (*store.Asset, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, store.ErrAssetNotFound(id)
	}
	return &a, nil
}

func (s *Store) GetAttribute(_ context.Context, id string) (*store.Attribute, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	a, ok := s.attributes[id]
	if !ok {
		return nil, store.ErrAttributeNotFound(id)
	}
	return &a, nil
}

func (s *Store) GetMappings(_ context.Context, query store.MappingQuery, p store.ProcessMappings) error {
	s.mutex.RLock()
	matched := make([]store.Mapping, 0, 4)
	for _, m := range s.mappings {
		if query.Matches(&m) {
			matched = append(matched, m)
		}
	}
	s.mutex.RUnlock()
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID < matched[j].ID
	})
	for i := range matched {
		if err := p(&matched[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateAsset(_ context.Context, asset *store.Asset) (*store.Asset, error) {
	if err := store.ValidateAsset(asset); err != nil {
		return nil, err
	}
	a := store.PrepareAsset(asset)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.assets[a.ID]; ok {
		return nil, store.ErrDuplicateAsset(a.ID)
	}
	s.assets[a.ID] = *a
	return a, nil
}

func (s *Store) softDeleteMappings(match func(m *store.Mapping) bool) {
	now := time.Now().UnixNano()
	for id, m := range s.mappings {
		if !m.Deleted && match(&m) {
			m.Deleted = true
			m.Timestamp = now
			s.mappings[id] = m
		}
	}
}

func (s *Store) DeleteAsset(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.assets[id]; !ok {
		return store.ErrAssetNotFound(id)
	}
	delete(s.assets, id)
	s.softDeleteMappings(func(m *store.Mapping) bool { return m.AssetID == id })
	return nil
}

func (s *Store) CreateAttribute(_ context.Context, attribute *store.Attribute) (*store.Attribute, error) {
	if err := store.ValidateAttribute(attribute); err != nil {
		return nil, err
	}
	a := store.PrepareAttribute(attribute)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.attributes[a.ID]; ok {
		return nil, store.ErrDuplicateAttribute(a.ID)
	}
	s.attributes[a.ID] = *a
	return a, nil
}

func (s *Store) DeleteAttribute(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.attributes[id]; !ok {
		return store.ErrAttributeNotFound(id)
	}
	delete(s.attributes, id)
	s.softDeleteMappings(func(m *store.Mapping) bool { return m.AttributeID == id })
	return nil
}

// CreateMapping validates the mapping while holding the write lock so that
// concurrent writes for one pair cannot both succeed.
func (s *Store) CreateMapping(ctx context.Context, mapping *store.Mapping) (*store.Mapping, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := store.ValidateMappingWrite(ctx, lockedReader{s}, mapping); err != nil {
		return nil, err
	}
	m := store.PrepareMapping(mapping)
	if _, ok := s.mappings[m.ID]; ok {
		return nil, store.ErrDuplicateMappingID(m.ID)
	}
	s.mappings[m.ID] = *m
	return m, nil
}

func (s *Store) DeleteMapping(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	m, ok := s.mappings[id]
	if !ok || m.Deleted {
		return store.ErrMappingNotFound(id)
	}
	m.Deleted = true
	m.Timestamp = time.Now().UnixNano()
	s.mappings[id] = m
	return nil
}

func (s *Store) Close(context.Context) error {
	return nil
}

// lockedReader reads without locking, the caller holds the lock.
type lockedReader struct {
	s *Store
}

func (r lockedReader) GetAsset(_ context.Context, id string) (*store.Asset, error) {
	a, ok := r.s.assets[id]
	if !ok {
		return nil, store.ErrAssetNotFound(id)
	}
	return &a, nil
}

func (r lockedReader) GetAttribute(_ context.Context, id string) (*store.Attribute, error) {
	a, ok := r.s.attributes[id]
	if !ok {
		return nil, store.ErrAttributeNotFound(id)
	}
	return &a, nil
}

func (r lockedReader) GetMappings(_ context.Context, query store.MappingQuery, p store.ProcessMappings) error {
	for _, m := range r.s.mappings {
		if !query.Matches(&m) {
			continue
		}
		if err := p(&m); err != nil {
			return err
		}
	}
	return nil
}
