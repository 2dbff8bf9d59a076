package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/cartd/internal/storage"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type document struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store keeps one document per key in the "carts" collection.
type Store struct {
	collection *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		collection: db.Collection("carts"),
	}
}

func (m *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var doc document

	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, pkgerrors.Wrap(err, "failed to get cart")
	}

	return doc.Value, nil
}

func (m *Store) Set(ctx context.Context, key string, value []byte) error {
	filter := bson.M{"_id": key}
	update := bson.M{"$set": bson.M{
		"value":      value,
		"updated_at": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return pkgerrors.Wrap(err, "failed to upsert cart")
	}
	return nil
}

func (m *Store) Delete(ctx context.Context, key string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return pkgerrors.Wrap(err, "failed to delete cart")
	}
	return nil
}

// CreateIndexes expires carts that have not been written for ttl.
func (m *Store) CreateIndexes(ctx context.Context, ttl time.Duration) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return pkgerrors.Wrap(err, "failed to create indexes")
	}
	return nil
}
