package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersRepo reads and writes the L0 user index.
type UsersRepo struct {
	db *mongo.Database
}

// ReplaceAll replaces the full content of the default-pool user index with
// docs. The roster file is the only source of truth for membership, so
// personas that disappeared from the roster disappear from the index.
func (r *UsersRepo) ReplaceAll(ctx context.Context, docs []UserDoc) error {
	coll := r.db.Collection(UsersIndexCollection)

	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear user index: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	payload := make([]interface{}, len(docs))
	for i, d := range docs {
		payload[i] = d
	}
	if _, err := coll.InsertMany(ctx, payload); err != nil {
		return fmt.Errorf("insert user index: %w", err)
	}
	return nil
}

// UpsertSeason upserts docs into the season user index. created_at is set
// only on insert, so season membership accrues monotonically.
func (r *UsersRepo) UpsertSeason(ctx context.Context, docs []UserDoc) error {
	coll := r.db.Collection(UsersIndexSeasonCollection)

	for _, d := range docs {
		update := bson.M{
			"$set": bson.M{
				"accounts":   d.Accounts,
				"riotIds":    d.RiotIDs,
				"puuids":     d.PUUIDs,
				"updated_at": d.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"created_at": d.CreatedAt,
			},
		}
		_, err := coll.UpdateOne(ctx, bson.M{"_id": d.Persona}, update, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("upsert season persona %s: %w", d.Persona, err)
		}
	}
	return nil
}

// All returns every persona document of the given pool's user index.
func (r *UsersRepo) All(ctx context.Context, pool string) ([]UserDoc, error) {
	coll := r.db.Collection(UsersCollectionFor(pool))

	cur, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find user index: %w", err)
	}
	var docs []UserDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode user index: %w", err)
	}
	return docs, nil
}

// PUUIDMap returns puuid -> persona for the given pool.
func (r *UsersRepo) PUUIDMap(ctx context.Context, pool string) (map[string]string, error) {
	docs, err := r.All(ctx, pool)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string)
	for _, d := range docs {
		for _, puuid := range d.PUUIDs {
			m[puuid] = d.Persona
		}
	}
	return m, nil
}

// Touch returns a UserDoc ready for persistence with fresh timestamps.
func Touch(persona string, accounts []Account) UserDoc {
	now := time.Now().UTC()
	doc := UserDoc{
		Persona:   persona,
		Accounts:  accounts,
		CreatedAt: now,
		UpdatedAt: now,
	}
	seenID := make(map[string]bool)
	seenPUUID := make(map[string]bool)
	for _, a := range accounts {
		if !seenID[a.RiotID] {
			seenID[a.RiotID] = true
			doc.RiotIDs = append(doc.RiotIDs, a.RiotID)
		}
		if !seenPUUID[a.PUUID] {
			seenPUUID[a.PUUID] = true
			doc.PUUIDs = append(doc.PUUIDs, a.PUUID)
		}
	}
	return doc
}
