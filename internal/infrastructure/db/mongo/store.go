package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

const defaultCollection = "client_storage"

// Store is a key-value store keeping one document per key.
type Store struct {
	coll    *mongo.Collection
	client  *mongo.Client
	timeout time.Duration
}

func NewStore(db *mongo.Database, collection string) *Store {
	if collection == "" {
		collection = defaultCollection
	}
	return &Store{coll: db.Collection(collection)}
}

type entry struct {
	Key       string `bson:"_id"`
	Value     string `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var e entry
	if err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: find %s: %w", domain.ErrStorage, key, err)
	}
	return e.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{
		"value":      value,
		"updated_at": time.Now().UTC().Unix(),
	}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %w", domain.ErrStorage, key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("%w: delete %s: %w", domain.ErrStorage, key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.coll.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("%w: mongo ping: %w", domain.ErrStorage, err)
	}
	return nil
}
