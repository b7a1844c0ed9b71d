package mongodb

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/plgd-dev/assethub/mapping/store"
	pkgMongo "github.com/plgd-dev/assethub/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace"
)

type Store struct {
	*pkgMongo.Store
}

const (
	assetsCol     = "assets"
	attributesCol = "attributes"
	mappingsCol   = "mappings"
)

// one live mapping per (asset, attribute)
var assetIDAttributeIDUniqueIndex = mongo.IndexModel{
	Keys: bson.D{
		{Key: store.AssetIDKey, Value: 1},
		{Key: store.AttributeIDKey, Value: 1},
	},
	Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.D{{Key: store.DeletedKey, Value: false}}),
}

var refIndex = mongo.IndexModel{
	Keys: bson.D{
		{Key: store.RefAssetIDKey, Value: 1},
		{Key: store.RefAttributeIDKey, Value: 1},
	},
}

func New(ctx context.Context, cfg *Config, tracerProvider trace.TracerProvider) (*Store, error) {
	m, err := pkgMongo.NewStoreWithCollections(ctx, &cfg.Mongo, tracerProvider, map[string][]mongo.IndexModel{
		assetsCol:     nil,
		attributesCol: nil,
		mappingsCol:   {assetIDAttributeIDUniqueIndex, refIndex},
	})
	if err != nil {
		return nil, err
	}
	s := Store{Store: m}
	s.SetOnClear(s.clearDatabases)
	return &s, nil
}

func (s *Store) clearDatabases(ctx context.Context) error {
	var errors *multierror.Error
	collections := []string{assetsCol, attributesCol, mappingsCol}
	for _, collection := range collections {
		if err := s.Collection(collection).Drop(ctx); err != nil {
			errors = multierror.Append(errors, err)
		}
	}
	return errors.ErrorOrNil()
}

func (s *Store) Close(ctx context.Context) error {
	return s.Store.Close(ctx)
}
