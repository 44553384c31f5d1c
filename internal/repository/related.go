package repository

import (
	"context"
	"fmt"

	"github.com/parchmentlabs/questmatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const relatedCollection = "related_quests"

type RelatedRepository struct {
	mongoRepo *MongoRepository
}

func NewRelatedRepository(mongoRepo *MongoRepository) *RelatedRepository {
	return &RelatedRepository{
		mongoRepo: mongoRepo,
	}
}

// ReplaceRelatedQuests swaps the persisted related list for a quest in one
// transaction, so readers never observe a partial list. An empty slice
// clears the list.
func (r *RelatedRepository) ReplaceRelatedQuests(ctx context.Context, questID string, related []models.RelatedQuest) error {
	coll := r.mongoRepo.GetCollection(relatedCollection)

	err := r.mongoRepo.WithTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := coll.DeleteMany(sc, bson.M{"questId": questID}); err != nil {
			return fmt.Errorf("failed to clear related quests: %w", err)
		}
		if len(related) == 0 {
			return nil
		}

		docs := make([]interface{}, len(related))
		for i := range related {
			docs[i] = related[i]
		}
		if _, err := coll.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("failed to insert related quests: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace related quests for %s: %w", questID, err)
	}
	return nil
}

// GetRelatedQuests returns the persisted list for a quest in rank order.
func (r *RelatedRepository) GetRelatedQuests(ctx context.Context, questID string) ([]models.RelatedQuest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := r.mongoRepo.FindMany(ctx, relatedCollection, bson.M{"questId": questID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find related quests: %w", err)
	}
	defer cursor.Close(ctx)

	var related []models.RelatedQuest
	if err := cursor.All(ctx, &related); err != nil {
		return nil, fmt.Errorf("failed to decode related quests: %w", err)
	}

	return related, nil
}
