package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/plgd-dev/assethub/mapping/store"
	"github.com/plgd-dev/assethub/pkg/postgres"
)

const selectMappingColumns = "select id, kind, asset_id, attribute_id, value::text, source_asset_id, channel, ref_asset_id, ref_attribute_id, deleted, timestamp from mappings"

func now() int64 {
	return time.Now().UnixNano()
}

func selectMappings(query store.MappingQuery) (string, []interface{}) {
	var where []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, cond+" = $"+strconv.Itoa(len(args)))
	}
	if query.AssetID != "" {
		add("asset_id", query.AssetID)
	}
	if query.AttributeID != "" {
		add("attribute_id", query.AttributeID)
	}
	q := selectMappingColumns
	if !query.IncludeDeleted {
		where = append(where, "not deleted")
	}
	if len(where) > 0 {
		q += " where " + strings.Join(where, " and ")
	}
	return q + " order by id", args
}

func scanMapping(rows *sql.Rows) (*store.Mapping, error) {
	var m store.Mapping
	var kind string
	var value sql.NullString
	if err := rows.Scan(&m.ID, &kind, &m.AssetID, &m.AttributeID, &value, &m.SourceAssetID,
		&m.Channel, &m.RefAssetID, &m.RefAttributeID, &m.Deleted, &m.Timestamp); err != nil {
		return nil, err
	}
	m.Kind = store.MappingKind(kind)
	if value.Valid {
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(value.String, &m.Value); err != nil {
			return nil, fmt.Errorf("cannot decode value of mapping('%v'): %w", m.ID, err)
		}
	}
	return &m, nil
}

func (s *Store) GetMappings(ctx context.Context, query store.MappingQuery, p store.ProcessMappings) error {
	q, args := selectMappings(query)
	rows, err := s.DB().QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return err
		}
		if err = p(m); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CreateMapping checks the stored state first; the partial unique index
// rejects a concurrent second write for the same pair.
func (s *Store) CreateMapping(ctx context.Context, mapping *store.Mapping) (*store.Mapping, error) {
	if err := store.ValidateMappingWrite(ctx, s, mapping); err != nil {
		return nil, err
	}
	m := store.PrepareMapping(mapping)
	var value interface{}
	if m.Value != nil {
		v, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(m.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot encode value: %w", store.ErrValidation, err)
		}
		value = v
	}
	_, err := s.DB().ExecContext(ctx, `insert into mappings
		(id, kind, asset_id, attribute_id, value, source_asset_id, channel, ref_asset_id, ref_attribute_id, deleted, timestamp)
		values ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10, $11)`,
		m.ID, string(m.Kind), m.AssetID, m.AttributeID, value, m.SourceAssetID, m.Channel, m.RefAssetID, m.RefAttributeID, m.Deleted, m.Timestamp)
	if postgres.IsUniqueViolation(err) {
		return nil, store.ErrDuplicateMapping(m.AssetID, m.AttributeID)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) DeleteMapping(ctx context.Context, id string) error {
	res, err := s.DB().ExecContext(ctx, "update mappings set deleted = true, timestamp = $2 where id = $1 and not deleted", id, now())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrMappingNotFound(id)
	}
	return nil
}
