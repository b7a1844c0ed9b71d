package cqldb

import (
	"context"
	"errors"

	"github.com/gocql/gocql"
	"github.com/plgd-dev/assethub/mapping/store"
)

func (s *Store) getNamed(ctx context.Context, table, id string) (string, error) {
	var name string
	err := s.Session().Query("select "+nameKey+" from "+s.Table(table)+" where "+idKey+"=?", id).WithContext(ctx).Scan(&name)
	return name, err
}

// insertNamed returns false when the id is already used.
func (s *Store) insertNamed(ctx context.Context, table, id, name string) (bool, error) {
	return s.Session().Query("insert into "+s.Table(table)+" ("+idKey+","+nameKey+") values (?,?) if not exists", id, name).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
}

// deleteNamed returns false when the id does not exist.
func (s *Store) deleteNamed(ctx context.Context, table, id string) (bool, error) {
	return s.Session().Query("delete from "+s.Table(table)+" where "+idKey+"=? if exists", id).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
}

func (s *Store) GetAsset(ctx context.Context, id string) (*store.Asset, error) {
	name, err := s.getNamed(ctx, assetsTable, id)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, store.ErrAssetNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &store.Asset{ID: id, Name: name}, nil
}

func (s *Store) CreateAsset(ctx context.Context, asset *store.Asset) (*store.Asset, error) {
	if err := store.ValidateAsset(asset); err != nil {
		return nil, err
	}
	a := store.PrepareAsset(asset)
	applied, err := s.insertNamed(ctx, assetsTable, a.ID, a.Name)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, store.ErrDuplicateAsset(a.ID)
	}
	return a, nil
}

func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	applied, err := s.deleteNamed(ctx, assetsTable, id)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrAssetNotFound(id)
	}
	return s.softDeleteMappings(ctx, store.MappingQuery{AssetID: id})
}

func (s *Store) GetAttribute(ctx context.Context, id string) (*store.Attribute, error) {
	name, err := s.getNamed(ctx, attributesTable, id)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, store.ErrAttributeNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &store.Attribute{ID: id, Name: name}, nil
}

func (s *Store) CreateAttribute(ctx context.Context, attribute *store.Attribute) (*store.Attribute, error) {
	if err := store.ValidateAttribute(attribute); err != nil {
		return nil, err
	}
	a := store.PrepareAttribute(attribute)
	applied, err := s.insertNamed(ctx, attributesTable, a.ID, a.Name)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, store.ErrDuplicateAttribute(a.ID)
	}
	return a, nil
}

func (s *Store) DeleteAttribute(ctx context.Context, id string) error {
	applied, err := s.deleteNamed(ctx, attributesTable, id)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrAttributeNotFound(id)
	}
	return s.softDeleteMappings(ctx, store.MappingQuery{AttributeID: id})
}
