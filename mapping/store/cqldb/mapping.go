package cqldb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"
	jsoniter "github.com/json-iterator/go"
	"github.com/plgd-dev/assethub/mapping/store"
)

func encodeValue(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(v)
}

func decodeValue(s string) (interface{}, error) {
	if s == "" {
		return nil, nil
	}
	var v interface{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(s, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// selectMappings builds the select statement for the query, the deleted flag is filtered by the caller.
func selectMappings(table string, query store.MappingQuery) (string, []interface{}) {
	var where []string
	var values []interface{}
	if query.AssetID != "" {
		where = append(where, assetIDKey+"=?")
		values = append(values, query.AssetID)
	}
	if query.AttributeID != "" {
		where = append(where, attributeIDKey+"=?")
		values = append(values, query.AttributeID)
	}
	q := "select " + strings.Join(mappingColumns, ",") + " from " + table
	if len(where) > 0 {
		q += " where " + strings.Join(where, " and ")
	}
	return q, values
}

func scanMapping(iter *gocql.Iter) (*store.Mapping, string, bool) {
	var m store.Mapping
	var kind, value string
	ok := iter.Scan(&m.AssetID, &m.AttributeID, &m.ID, &kind, &value, &m.SourceAssetID,
		&m.Channel, &m.RefAssetID, &m.RefAttributeID, &m.Deleted, &m.Timestamp)
	m.Kind = store.MappingKind(kind)
	return &m, value, ok
}

func (s *Store) GetMappings(ctx context.Context, query store.MappingQuery, p store.ProcessMappings) error {
	q, values := selectMappings(s.Table(mappingsTable), query)
	iter := s.Session().Query(q, values...).WithContext(ctx).Iter()
	for {
		m, value, ok := scanMapping(iter)
		if !ok {
			break
		}
		if !query.Matches(m) {
			continue
		}
		v, err := decodeValue(value)
		if err != nil {
			_ = iter.Close()
			return fmt.Errorf("cannot decode value of mapping('%v'): %w", m.ID, err)
		}
		m.Value = v
		if err := p(m); err != nil {
			_ = iter.Close()
			return err
		}
	}
	return iter.Close()
}

func (s *Store) CreateMapping(ctx context.Context, mapping *store.Mapping) (*store.Mapping, error) {
	if err := store.ValidateMappingWrite(ctx, s, mapping); err != nil {
		return nil, err
	}
	m := store.PrepareMapping(mapping)
	value, err := encodeValue(m.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot encode value: %w", store.ErrValidation, err)
	}
	q := "insert into " + s.Table(mappingsTable) + " (" + strings.Join(mappingColumns, ",") + ") values (?,?,?,?,?,?,?,?,?,?,?) if not exists"
	applied, err := s.Session().Query(q, m.AssetID, m.AttributeID, m.ID, string(m.Kind), value, m.SourceAssetID,
		m.Channel, m.RefAssetID, m.RefAttributeID, m.Deleted, m.Timestamp).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, store.ErrDuplicateMappingID(m.ID)
	}
	return m, nil
}

func (s *Store) markDeleted(ctx context.Context, m *store.Mapping, ts int64) error {
	return s.Session().Query("update "+s.Table(mappingsTable)+" set "+deletedKey+"=?, "+timestampKey+"=? where "+
		assetIDKey+"=? and "+attributeIDKey+"=? and "+idKey+"=?", true, ts, m.AssetID, m.AttributeID, m.ID).WithContext(ctx).Exec()
}

func (s *Store) DeleteMapping(ctx context.Context, id string) error {
	var m store.Mapping
	err := s.Session().Query("select "+assetIDKey+","+attributeIDKey+","+deletedKey+" from "+s.Table(mappingsTable)+" where "+idKey+"=?", id).
		WithContext(ctx).Scan(&m.AssetID, &m.AttributeID, &m.Deleted)
	if errors.Is(err, gocql.ErrNotFound) {
		return store.ErrMappingNotFound(id)
	}
	if err != nil {
		return err
	}
	if m.Deleted {
		return store.ErrMappingNotFound(id)
	}
	m.ID = id
	return s.markDeleted(ctx, &m, time.Now().UnixNano())
}

func (s *Store) softDeleteMappings(ctx context.Context, query store.MappingQuery) error {
	mappings, err := store.LoadMappings(ctx, s, query)
	if err != nil {
		return err
	}
	ts := time.Now().UnixNano()
	for _, m := range mappings {
		if err := s.markDeleted(ctx, m, ts); err != nil {
			return fmt.Errorf("cannot delete mapping('%v'): %w", m.ID, err)
		}
	}
	return nil
}
