package repository

import (
	"context"
	"fmt"

	"github.com/parchmentlabs/questmatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const searchIndexCollection = "search_index"

type SearchIndexRepository struct {
	mongoRepo *MongoRepository
}

func NewSearchIndexRepository(mongoRepo *MongoRepository) *SearchIndexRepository {
	return &SearchIndexRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *SearchIndexRepository) UpsertIndexEntry(ctx context.Context, entry *models.IndexEntry) error {
	filter := bson.M{"_id": entry.QuestID}
	update := bson.M{"$set": entry}
	opts := options.Update().SetUpsert(true)

	if err := r.mongoRepo.UpdateOne(ctx, searchIndexCollection, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert index entry: %w", err)
	}
	return nil
}

func (r *SearchIndexRepository) DeleteIndexEntry(ctx context.Context, questID string) error {
	if _, err := r.mongoRepo.GetCollection(searchIndexCollection).DeleteOne(ctx, bson.M{"_id": questID}); err != nil {
		return fmt.Errorf("failed to delete index entry: %w", err)
	}
	return nil
}

// FindIDsByAnyToken returns quest ids whose indexed token set intersects
// tokens, capped at limit.
func (r *SearchIndexRepository) FindIDsByAnyToken(ctx context.Context, tokens []string, limit int) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	filter := bson.M{"tokens": bson.M{"$in": tokens}}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.mongoRepo.FindMany(ctx, searchIndexCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query search index: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode index entries: %w", err)
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids, nil
}
