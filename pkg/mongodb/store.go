package mongodb

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/plgd-dev/assethub/pkg/fn"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/otel/trace"
)

// Store wraps a mongo client bound to a single database.
type Store struct {
	client    *mongo.Client
	dbName    string
	onClear   func(context.Context) error
	closeFunc fn.FuncList
}

func NewStore(ctx context.Context, cfg *Config, tracerProvider trace.TracerProvider) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.URI).
		SetMonitor(otelmongo.NewMonitor(otelmongo.WithTracerProvider(tracerProvider))).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MaxConnIdleTime > 0 {
		opts.SetMaxConnIdleTime(cfg.MaxConnIdleTime)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongodb: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("could not ping mongodb: %w", err)
	}
	return &Store{client: client, dbName: cfg.Database}, nil
}

// NewStoreWithCollections creates the store and ensures the indexes of the given collections.
func NewStoreWithCollections(ctx context.Context, cfg *Config, tracerProvider trace.TracerProvider, collections map[string][]mongo.IndexModel) (*Store, error) {
	s, err := NewStore(ctx, cfg, tracerProvider)
	if err != nil {
		return nil, err
	}
	for col, indexes := range collections {
		if len(indexes) == 0 {
			continue
		}
		if _, err := s.Collection(col).Indexes().CreateMany(ctx, indexes); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("cannot create indexes for collection %v: %w", col, err)
		}
	}
	return s, nil
}

func (s *Store) Client() *mongo.Client {
	return s.client
}

func (s *Store) DBName() string {
	return s.dbName
}

func (s *Store) Database() *mongo.Database {
	return s.client.Database(s.dbName)
}

func (s *Store) Collection(name string) *mongo.Collection {
	return s.Database().Collection(name)
}

// EnsureIndex creates non-unique indexes on the collection.
func (s *Store) EnsureIndex(ctx context.Context, col string, indexes ...bson.D) error {
	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, keys := range indexes {
		models = append(models, mongo.IndexModel{Keys: keys, Options: options.Index().SetBackground(false)})
	}
	if len(models) == 0 {
		return nil
	}
	if _, err := s.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("cannot ensure indexes for collection %v: %w", col, err)
	}
	return nil
}

func (s *Store) SetOnClear(onClear func(context.Context) error) {
	s.onClear = onClear
}

// Clear drops the data of the store.
func (s *Store) Clear(ctx context.Context) error {
	if s.onClear != nil {
		return s.onClear(ctx)
	}
	return s.Database().Drop(ctx)
}

// AddCloseFunc adds a function to be called by the Close method.
func (s *Store) AddCloseFunc(f func()) {
	s.closeFunc.AddFunc(f)
}

func (s *Store) Close(ctx context.Context) error {
	var errors *multierror.Error
	if err := s.client.Disconnect(ctx); err != nil {
		errors = multierror.Append(errors, err)
	}
	s.closeFunc.Execute()
	return errors.ErrorOrNil()
}
