package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MatchesRepo reads and writes the append-only L0_matches collection.
type MatchesRepo struct {
	coll *mongo.Collection
}

// EnsureIndexes creates the secondary indexes the L1 builder scans on.
func (r *MatchesRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "data.info.queueId", Value: 1}}},
		{Keys: bson.D{{Key: "data.info.gameStartTimestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create match indexes: %w", err)
	}
	return nil
}

// IDs returns every stored match id. Used to seed the fetcher's dedupe
// filter.
func (r *MatchesRepo) IDs(ctx context.Context) ([]string, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("list match ids: %w", err)
	}

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode match ids: %w", err)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

// Has reports whether a match id is already stored.
func (r *MatchesRepo) Has(ctx context.Context, matchID string) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"_id": matchID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check match %s: %w", matchID, err)
	}
	return true, nil
}

// Insert stores a raw match. Duplicate-key conflicts from concurrent
// inserts are treated as success.
func (r *MatchesRepo) Insert(ctx context.Context, doc RawMatchDoc) error {
	_, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert match %s: %w", doc.ID, err)
	}
	return nil
}

// ScanByQueue streams every raw match with the given queue id through fn.
// A decode failure on a single document is reported to onSkip and the scan
// continues.
func (r *MatchesRepo) ScanByQueue(ctx context.Context, queue int, fn func(RawMatchDoc) error, onSkip func(id string, err error)) error {
	cur, err := r.coll.Find(ctx, bson.M{"data.info.queueId": queue})
	if err != nil {
		return fmt.Errorf("scan matches queue %d: %w", queue, err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc RawMatchDoc
		if err := cur.Decode(&doc); err != nil {
			var key struct {
				ID string `bson:"_id"`
			}
			_ = cur.Decode(&key)
			if onSkip != nil {
				onSkip(key.ID, err)
			}
			continue
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return cur.Err()
}

// Count returns the number of stored raw matches.
func (r *MatchesRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
