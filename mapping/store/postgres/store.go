package postgres

import (
	"context"
	"fmt"

	"github.com/plgd-dev/assethub/pkg/postgres"
)

var schema = []string{
	`create table if not exists assets (
		id text primary key,
		name text not null
	)`,
	`create table if not exists attributes (
		id text primary key,
		name text not null
	)`,
	`create table if not exists mappings (
		id text primary key,
		kind text not null,
		asset_id text not null,
		attribute_id text not null,
		value jsonb,
		source_asset_id text not null default '',
		channel text not null default '',
		ref_asset_id text not null default '',
		ref_attribute_id text not null default '',
		deleted boolean not null default false,
		timestamp bigint not null
	)`,
	// one live mapping per (asset, attribute)
	`create unique index if not exists mappings_live_pair on mappings (asset_id, attribute_id) where not deleted`,
	`create index if not exists mappings_ref on mappings (ref_asset_id, ref_attribute_id)`,
}

type Store struct {
	*postgres.Store
}

func New(ctx context.Context, cfg *Config) (*Store, error) {
	p, err := postgres.New(ctx, &cfg.Embedded)
	if err != nil {
		return nil, err
	}
	for _, q := range schema {
		if _, err := p.DB().ExecContext(ctx, q); err != nil {
			_ = p.Close(ctx)
			return nil, fmt.Errorf("cannot create schema: %w", err)
		}
	}
	return &Store{Store: p}, nil
}

// Clear removes all rows.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.DB().ExecContext(ctx, "truncate table mappings, attributes, assets")
	return err
}
