package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/plgd-dev/assethub/mapping/store"
	"github.com/plgd-dev/assethub/pkg/postgres"
)

func (s *Store) getName(ctx context.Context, q, id string) (string, error) {
	var name string
	err := s.DB().QueryRowContext(ctx, q, id).Scan(&name)
	return name, err
}

func (s *Store) GetAsset(ctx context.Context, id string) (*store.Asset, error) {
	name, err := s.getName(ctx, "select name from assets where id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err := s.DB().ExecContext(ctx, "insert into assets (id, name) values ($1, $2)", a.ID, a.Name)
	if postgres.IsUniqueViolation(err) {
		return nil, store.ErrDuplicateAsset(a.ID)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) deleteWithMappings(ctx context.Context, deleteQuery, mappingsQuery, id string) (bool, error) {
	tx, err := s.DB().BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()
	res, err := tx.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err = tx.ExecContext(ctx, mappingsQuery, id, now()); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	ok, err := s.deleteWithMappings(ctx,
		"delete from assets where id = $1",
		"update mappings set deleted = true, timestamp = $2 where asset_id = $1 and not deleted", id)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrAssetNotFound(id)
	}
	return nil
}

func (s *Store) GetAttribute(ctx context.Context, id string) (*store.Attribute, error) {
	name, err := s.getName(ctx, "select name from attributes where id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err := s.DB().ExecContext(ctx, "insert into attributes (id, name) values ($1, $2)", a.ID, a.Name)
	if postgres.IsUniqueViolation(err) {
		return nil, store.ErrDuplicateAttribute(a.ID)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) DeleteAttribute(ctx context.Context, id string) error {
	ok, err := s.deleteWithMappings(ctx,
		"delete from attributes where id = $1",
		"update mappings set deleted = true, timestamp = $2 where attribute_id = $1 and not deleted", id)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrAttributeNotFound(id)
	}
	return nil
}
