package mongodb

import (
	"context"
	"errors"

	"github.com/plgd-dev/assethub/mapping/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *Store) GetAsset(ctx context.Context, id string) (*store.Asset, error) {
	var a store.Asset
	err := s.Collection(assetsCol).FindOne(ctx, bson.M{store.IDKey: id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrAssetNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateAsset(ctx context.Context, asset *store.Asset) (*store.Asset, error) {
	if err := store.ValidateAsset(asset); err != nil {
		return nil, err
	}
	a := store.PrepareAsset(asset)
	_, err := s.Collection(assetsCol).InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return nil, store.ErrDuplicateAsset(a.ID)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	res, err := s.Collection(assetsCol).DeleteOne(ctx, bson.M{store.IDKey: id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrAssetNotFound(id)
	}
	return s.softDeleteMappings(ctx, bson.M{store.AssetIDKey: id})
}

func (s *Store) GetAttribute(ctx context.Context, id string) (*store.Attribute, error) {
	var a store.Attribute
	err := s.Collection(attributesCol).FindOne(ctx, bson.M{store.IDKey: id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrAttributeNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateAttribute(ctx context.Context, attribute *store.Attribute) (*store.Attribute, error) {
	if err := store.ValidateAttribute(attribute); err != nil {
		return nil, err
	}
	a := store.PrepareAttribute(attribute)
	_, err := s.Collection(attributesCol).InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return nil, store.ErrDuplicateAttribute(a.ID)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) DeleteAttribute(ctx context.Context, id string) error {
	res, err := s.Collection(attributesCol).DeleteOne(ctx, bson.M{store.IDKey: id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrAttributeNotFound(id)
	}
	return s.softDeleteMappings(ctx, bson.M{store.AttributeIDKey: id})
}
