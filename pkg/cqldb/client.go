package cqldb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gocql/gocql"
	"github.com/plgd-dev/assethub/pkg/fn"
	"github.com/plgd-dev/assethub/pkg/log"
)

const (
	UUIDType      = "uuid"
	StringType    = "text"
	BytesType     = "blob"
	BooleanType   = "boolean"
	TimestampType = "timestamp"
	Int64Type     = "bigint"
)

// Client wraps a gocql session bound to one keyspace.
type Client struct {
	session   *gocql.Session
	config    Config
	logger    log.Logger
	closeFunc fn.FuncList
}

func replicationToString(replication map[string]interface{}) string {
	keys := make([]string, 0, len(replication))
	for k := range replication {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := replication[k].(type) {
		case string:
			parts = append(parts, fmt.Sprintf("'%v': '%v'", k, v))
		default:
			parts = append(parts, fmt.Sprintf("'%v': %v", k, v))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// New connects to the cluster and creates the keyspace when configured.
func New(ctx context.Context, config Config, logger log.Logger) (*Client, error) {
	cluster := gocql.NewCluster(config.Hosts...)
	if config.Port > 0 {
		cluster.Port = config.Port
	}
	if config.NumConns > 0 {
		cluster.NumConns = config.NumConns
	}
	if config.ConnectTimeout > 0 {
		cluster.ConnectTimeout = config.ConnectTimeout
		cluster.Timeout = config.ConnectTimeout
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cannot create cqldb session: %w", err)
	}
	if config.Keyspace.Create {
		q := "create keyspace if not exists " + config.Keyspace.Name + " with replication = " + replicationToString(config.Keyspace.Replication)
		if err = session.Query(q).WithContext(ctx).Exec(); err != nil {
			session.Close()
			return nil, fmt.Errorf("cannot create keyspace(%v): %w", config.Keyspace.Name, err)
		}
	}
	return &Client{
		session: session,
		config:  config,
		logger:  logger,
	}, nil
}

func (c *Client) Session() *gocql.Session {
	return c.session
}

func (c *Client) Keyspace() string {
	return c.config.Keyspace.Name
}

func (c *Client) DropKeyspace(ctx context.Context) error {
	return c.session.Query("drop keyspace if exists " + c.Keyspace()).WithContext(ctx).Exec()
}

func (c *Client) DropTable(ctx context.Context, table string) error {
	return c.session.Query("drop table if exists " + c.Keyspace() + "." + table).WithContext(ctx).Exec()
}

// AddCloseFunc adds a function to be called by the Close method.
func (c *Client) AddCloseFunc(f func()) {
	c.closeFunc.AddFunc(f)
}

func (c *Client) Close() {
	c.session.Close()
	c.closeFunc.Execute()
}

// Index describes a secondary index of a table.
type Index struct {
	Name            string
	SecondaryColumn string
}

func (c *Client) CreateIndexes(ctx context.Context, table string, indexes []Index) error {
	for _, idx := range indexes {
		q := "create index if not exists " + idx.Name + " on " + c.Keyspace() + "." + table + " (" + idx.SecondaryColumn + ")"
		if err := c.session.Query(q).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("failed to create index(%v): %w", idx.Name, err)
		}
	}
	return nil
}
