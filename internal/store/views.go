package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ViewsRepo reads and writes the derived L1/L2 collections.
type ViewsRepo struct {
	db *mongo.Database
}

// UpsertFiltered writes L1 documents via unordered bulk upserts keyed by
// match id, so rebuilding an existing view is idempotent.
func (r *ViewsRepo) UpsertFiltered(ctx context.Context, name string, docs []FilteredMatchDoc) error {
	if len(docs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetReplacement(d).
			SetUpsert(true)
	}

	_, err := r.db.Collection(name).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("bulk upsert %s: %w", name, err)
	}
	return nil
}

// Drop removes a derived collection. Dropping a collection that does not
// exist is not an error.
func (r *ViewsRepo) Drop(ctx context.Context, name string) error {
	if err := r.db.Collection(name).Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	return nil
}

// InsertFlat bulk-inserts L2 participation rows.
func (r *ViewsRepo) InsertFlat(ctx context.Context, name string, docs []FlatParticipationDoc) error {
	if len(docs) == 0 {
		return nil
	}
	payload := make([]interface{}, len(docs))
	for i, d := range docs {
		payload[i] = d
	}
	if _, err := r.db.Collection(name).InsertMany(ctx, payload, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("insert into %s: %w", name, err)
	}
	return nil
}

// InsertSummaries bulk-inserts L2 match summaries.
func (r *ViewsRepo) InsertSummaries(ctx context.Context, name string, docs []MatchSummaryDoc) error {
	if len(docs) == 0 {
		return nil
	}
	payload := make([]interface{}, len(docs))
	for i, d := range docs {
		payload[i] = d
	}
	if _, err := r.db.Collection(name).InsertMany(ctx, payload, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("insert into %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a collection is present in the database.
func (r *ViewsRepo) Exists(ctx context.Context, name string) (bool, error) {
	names, err := r.db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	return len(names) > 0, nil
}

// windowFilter builds a gameStartTimestamp range filter for the given
// bounds (ms since epoch, either side optional).
func windowFilter(field string, startMs, endMs int64) bson.M {
	if startMs == 0 && endMs == 0 {
		return bson.M{}
	}
	bounds := bson.M{}
	if startMs != 0 {
		bounds["$gte"] = startMs
	}
	if endMs != 0 {
		bounds["$lte"] = endMs
	}
	return bson.M{field: bounds}
}

// LoadFiltered returns L1 documents, optionally windowed by
// gameStartTimestamp, sorted by match id for deterministic output.
func (r *ViewsRepo) LoadFiltered(ctx context.Context, name string, startMs, endMs int64) ([]FilteredMatchDoc, error) {
	cur, err := r.db.Collection(name).Find(ctx,
		windowFilter("data.info.gameStartTimestamp", startMs, endMs),
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	var docs []FilteredMatchDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return docs, nil
}

// LoadFlat returns L2 participation rows, optionally windowed by game start.
func (r *ViewsRepo) LoadFlat(ctx context.Context, name string, startMs, endMs int64) ([]FlatParticipationDoc, error) {
	cur, err := r.db.Collection(name).Find(ctx,
		windowFilter("game_start", startMs, endMs),
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	var docs []FlatParticipationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return docs, nil
}

// LoadSummaries returns L2 match summaries, optionally windowed.
func (r *ViewsRepo) LoadSummaries(ctx context.Context, name string, startMs, endMs int64) ([]MatchSummaryDoc, error) {
	cur, err := r.db.Collection(name).Find(ctx,
		windowFilter("game_start", startMs, endMs),
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	var docs []MatchSummaryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return docs, nil
}

// FindFilteredByID returns one L1 document, for the match-viewer API.
func (r *ViewsRepo) FindFilteredByID(ctx context.Context, name, matchID string) (*FilteredMatchDoc, error) {
	var doc FilteredMatchDoc
	err := r.db.Collection(name).FindOne(ctx, bson.M{"_id": matchID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s in %s: %w", matchID, name, err)
	}
	return &doc, nil
}
