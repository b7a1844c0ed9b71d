package mongodb

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	pkgMongo "github.com/plgd-dev/assethub/pkg/mongodb"
	"github.com/plgd-dev/assethub/query/filter"
	"github.com/plgd-dev/assethub/query/pipeline"
	"github.com/plgd-dev/assethub/telemetry/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace"
)

type Store struct {
	*pkgMongo.Store
}

var assetIDTimestampIndex = mongo.IndexModel{
	Keys: bson.D{
		{Key: store.AssetIDKey, Value: 1},
		{Key: store.TimestampKey, Value: -1},
	},
}

var resourceTypeTimestampIndex = mongo.IndexModel{
	Keys: bson.D{
		{Key: store.ResourceTypeKey, Value: 1},
		{Key: store.TimestampKey, Value: 1},
	},
}

var resourceIDIndex = mongo.IndexModel{
	Keys: bson.D{
		{Key: store.ResourceIDKey, Value: 1},
	},
}

func New(ctx context.Context, cfg *Config, tracerProvider trace.TracerProvider) (*Store, error) {
	m, err := pkgMongo.NewStoreWithCollections(ctx, &cfg.Mongo, tracerProvider, map[string][]mongo.IndexModel{
		store.TelemetryResource: {assetIDTimestampIndex},
		store.LifecycleResource: {resourceTypeTimestampIndex, resourceIDIndex},
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
	for _, collection := range []string{store.TelemetryResource, store.LifecycleResource} {
		if err := s.Collection(collection).Drop(ctx); err != nil {
			errors = multierror.Append(errors, err)
		}
	}
	return errors.ErrorOrNil()
}

func (s *Store) Insert(ctx context.Context, collection string, docs []store.Document) error {
	if len(docs) == 0 {
		return nil
	}
	documents := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		documents = append(documents, bson.M(d))
	}
	_, err := s.Collection(collection).InsertMany(ctx, documents)
	return err
}

func (s *Store) Find(ctx context.Context, collection string, predicates []filter.Predicate, opts store.FindOptions) ([]store.Document, error) {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(pipeline.Sort(opts.Sort))
	}
	if opts.Pagination.Skip > 0 {
		findOpts.SetSkip(opts.Pagination.Skip)
	}
	if opts.Pagination.Limit > 0 {
		findOpts.SetLimit(opts.Pagination.Limit)
	}
	cur, err := s.Collection(collection).Find(ctx, pipeline.Match(predicates), findOpts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cur)
}

func (s *Store) Aggregate(ctx context.Context, collection string, p mongo.Pipeline) ([]store.Document, error) {
	cur, err := s.Collection(collection).Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cur)
}

func (s *Store) AggregateDatabase(ctx context.Context, p mongo.Pipeline) ([]store.Document, error) {
	cur, err := s.Database().Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cur)
}

func (s *Store) Close(ctx context.Context) error {
	return s.Store.Close(ctx)
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]store.Document, error) {
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	docs := make([]store.Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, store.Document(fromBSON(r).(map[string]interface{})))
	}
	return docs, nil
}

// fromBSON converts decoded bson values to plain Go values.
func fromBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		return fromBSONMap(val)
	case map[string]interface{}:
		return fromBSONMap(val)
	case bson.D:
		m := make(map[string]interface{}, len(val))
		for _, e := range val {
			m[e.Key] = fromBSON(e.Value)
		}
		return m
	case bson.A:
		out := make([]interface{}, 0, len(val))
		for _, e := range val {
			out = append(out, fromBSON(e))
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Decimal128:
		return val.String()
	case time.Time:
		return val.UTC()
	}
	return v
}

func fromBSONMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, e := range m {
		out[k] = fromBSON(e)
	}
	return out
}
