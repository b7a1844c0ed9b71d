package cqldb

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"
	"github.com/plgd-dev/assethub/pkg/log"
)

// Store is a base for cqldb backed stores working with tables of one keyspace.
type Store struct {
	client *Client
	logger log.Logger
}

func NewStore(client *Client, logger log.Logger) *Store {
	return &Store{
		client: client,
		logger: logger,
	}
}

// Table returns the keyspace qualified table name.
func (s *Store) Table(name string) string {
	return s.client.Keyspace() + "." + name
}

func (s *Store) Session() *gocql.Session {
	return s.client.Session()
}

func (s *Store) Logger() log.Logger {
	return s.logger
}

func (s *Store) AddCloseFunc(f func()) {
	s.client.AddCloseFunc(f)
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.client.DropKeyspace(ctx)
	if err != nil {
		return fmt.Errorf("cannot clear: %w", err)
	}
	return nil
}

// Clear documents in table, but don't drop the keyspace or the table
func (s *Store) ClearTable(ctx context.Context, name string) error {
	return s.client.Session().Query("truncate " + s.Table(name) + ";").WithContext(ctx).Exec()
}

// Close closes the database session.
func (s *Store) Close(_ context.Context) error {
	s.client.Close()
	return nil
}
