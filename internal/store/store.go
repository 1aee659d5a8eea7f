// Package store is the MongoDB access layer. One collection per pipeline
// tier; primary keys live in _id so duplicate inserts surface as
// duplicate-key errors.
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lolmetrics/internal/config"
)

// Store wraps the Mongo client and database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens the Mongo connection and pings it.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Collection returns a raw collection handle.
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// Users returns the user-index repository.
func (s *Store) Users() *UsersRepo {
	return &UsersRepo{db: s.db}
}

// Matches returns the raw-match repository.
func (s *Store) Matches() *MatchesRepo {
	return &MatchesRepo{coll: s.db.Collection(MatchesCollection)}
}

// Views returns the L1/L2 repository.
func (s *Store) Views() *ViewsRepo {
	return &ViewsRepo{db: s.db}
}

// CollectionNames lists all collections in the database.
func (s *Store) CollectionNames(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.M{})
}

// Count returns the document count of a collection.
func (s *Store) Count(ctx context.Context, name string) (int64, error) {
	return s.db.Collection(name).CountDocuments(ctx, bson.M{})
}
