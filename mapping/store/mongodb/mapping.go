package mongodb

import (
	"context"
	"time"

	"github.com/plgd-dev/assethub/mapping/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func toMappingsFilter(query store.MappingQuery) bson.M {
	filter := bson.M{}
	if !query.IncludeDeleted {
		filter[store.DeletedKey] = false
	}
	if query.AssetID != "" {
		filter[store.AssetIDKey] = query.AssetID
	}
	if query.AttributeID != "" {
		filter[store.AttributeIDKey] = query.AttributeID
	}
	return filter
}

func (s *Store) GetMappings(ctx context.Context, query store.MappingQuery, p store.ProcessMappings) error {
	opts := options.Find().SetSort(bson.D{{Key: store.IDKey, Value: 1}})
	cur, err := s.Collection(mappingsCol).Find(ctx, toMappingsFilter(query), opts)
	if err != nil {
		return err
	}
	return processCursor(ctx, cur, p)
}

func processCursor[T any](ctx context.Context, cr *mongo.Cursor, proc store.Process[T]) error {
	iter := store.MongoIterator[T]{Cursor: cr}
	err := func() error {
		for {
			var v T
			if !iter.Next(ctx, &v) {
				break
			}
			if err := proc(&v); err != nil {
				return err
			}
		}
		return iter.Err()
	}()
	errClose := cr.Close(ctx)
	if err != nil {
		return err
	}
	return errClose
}

// CreateMapping checks the stored state first; the partial unique index
// rejects a concurrent second write for the same pair.
func (s *Store) CreateMapping(ctx context.Context, mapping *store.Mapping) (*store.Mapping, error) {
	if err := store.ValidateMappingWrite(ctx, s, mapping); err != nil {
		return nil, err
	}
	m := store.PrepareMapping(mapping)
	_, err := s.Collection(mappingsCol).InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return nil, store.ErrDuplicateMapping(m.AssetID, m.AttributeID)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) DeleteMapping(ctx context.Context, id string) error {
	res, err := s.Collection(mappingsCol).UpdateOne(ctx,
		bson.M{store.IDKey: id, store.DeletedKey: false},
		bson.M{"$set": bson.M{store.DeletedKey: true, store.TimestampKey: time.Now().UnixNano()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrMappingNotFound(id)
	}
	return nil
}

func (s *Store) softDeleteMappings(ctx context.Context, filter bson.M) error {
	filter[store.DeletedKey] = false
	_, err := s.Collection(mappingsCol).UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{store.DeletedKey: true, store.TimestampKey: time.Now().UnixNano()}})
	return err
}
