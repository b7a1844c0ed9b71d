package cqldb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plgd-dev/assethub/pkg/cqldb"
	"github.com/plgd-dev/assethub/pkg/log"
)

const (
	assetsTable     = "assets"
	attributesTable = "attributes"
	mappingsTable   = "mappings"
)

// cqldb has all keys in lowercase
const (
	idKey             = "id"
	nameKey           = "name"
	kindKey           = "kind"
	assetIDKey        = "assetid"
	attributeIDKey    = "attributeid"
	valueKey          = "value"
	sourceAssetIDKey  = "sourceassetid"
	channelKey        = "channel"
	refAssetIDKey     = "refassetid"
	refAttributeIDKey = "refattributeid"
	deletedKey        = "deleted"
	timestampKey      = "timestamp"
)

// partition key: assetIDKey, clustering: attributeIDKey, idKey
var mappingsPrimaryKey = "primary key ((" + assetIDKey + "), " + attributeIDKey + ", " + idKey + ")"

var mappingColumns = []string{
	assetIDKey, attributeIDKey, idKey, kindKey, valueKey, sourceAssetIDKey,
	channelKey, refAssetIDKey, refAttributeIDKey, deletedKey, timestampKey,
}

var mappingsIndexes = []cqldb.Index{
	{
		Name:            "mappingIdIndex",
		SecondaryColumn: idKey,
	},
	{
		Name:            "mappingAttributeIdIndex",
		SecondaryColumn: attributeIDKey,
	},
}

// Store implements the mapping store for cqldb. Uniqueness of the live
// mapping per (asset, attribute) is checked before every write.
type Store struct {
	*cqldb.Store
}

func New(ctx context.Context, config *Config, logger log.Logger) (*Store, error) {
	client, err := cqldb.New(ctx, config.Embedded, logger)
	if err != nil {
		return nil, err
	}
	s, err := newStoreWithClient(ctx, client, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func createTables(ctx context.Context, client *cqldb.Client) error {
	tables := map[string]string{
		assetsTable:     idKey + " " + cqldb.StringType + " primary key," + nameKey + " " + cqldb.StringType,
		attributesTable: idKey + " " + cqldb.StringType + " primary key," + nameKey + " " + cqldb.StringType,
		mappingsTable: strings.Join([]string{
			assetIDKey + " " + cqldb.StringType,
			attributeIDKey + " " + cqldb.StringType,
			idKey + " " + cqldb.StringType,
			kindKey + " " + cqldb.StringType,
			valueKey + " " + cqldb.StringType,
			sourceAssetIDKey + " " + cqldb.StringType,
			channelKey + " " + cqldb.StringType,
			refAssetIDKey + " " + cqldb.StringType,
			refAttributeIDKey + " " + cqldb.StringType,
			deletedKey + " " + cqldb.BooleanType,
			timestampKey + " " + cqldb.Int64Type,
			mappingsPrimaryKey,
		}, ","),
	}
	for _, table := range []string{assetsTable, attributesTable, mappingsTable} {
		q := "create table if not exists " + client.Keyspace() + "." + table + " (" + tables[table] + ")"
		if err := client.Session().Query(q).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("failed to create table(%v): %w", table, err)
		}
	}
	return nil
}

func newStoreWithClient(ctx context.Context, client *cqldb.Client, logger log.Logger) (*Store, error) {
	if client == nil {
		return nil, errors.New("invalid client")
	}
	if err := createTables(ctx, client); err != nil {
		return nil, err
	}
	if err := client.CreateIndexes(ctx, mappingsTable, mappingsIndexes); err != nil {
		return nil, err
	}
	return &Store{
		Store: cqldb.NewStore(client, logger),
	}, nil
}
