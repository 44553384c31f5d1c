package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/parchmentlabs/questmatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const questsCollection = "quest_cards"

type QuestsRepository struct {
	mongoRepo *MongoRepository
}

func NewQuestsRepository(mongoRepo *MongoRepository) *QuestsRepository {
	return &QuestsRepository{
		mongoRepo: mongoRepo,
	}
}

// GetQuest returns (nil, nil) when the quest does not exist.
func (r *QuestsRepository) GetQuest(ctx context.Context, id string) (*models.Quest, error) {
	filter := bson.M{"_id": id}

	var quest models.Quest
	err := r.mongoRepo.FindOne(ctx, questsCollection, filter).Decode(&quest)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find quest: %w", err)
	}

	return &quest, nil
}

func (r *QuestsRepository) ListQuests(ctx context.Context) ([]models.Quest, error) {
	cursor, err := r.mongoRepo.FindMany(ctx, questsCollection, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer cursor.Close(ctx)

	var quests []models.Quest
	if err := cursor.All(ctx, &quests); err != nil {
		return nil, fmt.Errorf("failed to decode quests: %w", err)
	}

	return quests, nil
}

func (r *QuestsRepository) GetQuestsByIDs(ctx context.Context, ids []string) ([]models.Quest, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}
	cursor, err := r.mongoRepo.FindMany(ctx, questsCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find quests by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var quests []models.Quest
	if err := cursor.All(ctx, &quests); err != nil {
		return nil, fmt.Errorf("failed to decode quests: %w", err)
	}

	return quests, nil
}

// UpdateStandardization writes the standardization outcome fields onto a
// quest card. Zero-valued fields are unset rather than written.
func (r *QuestsRepository) UpdateStandardization(ctx context.Context, questID string, upd models.StandardizationUpdate) error {
	set := bson.M{
		"systemMigrationStatus":    upd.Status,
		"systemMigrationTimestamp": time.Now(),
	}
	unset := bson.M{}

	if upd.StandardizedGameSystem != "" {
		set["standardizedGameSystem"] = upd.StandardizedGameSystem
	}
	if upd.SuggestedSystem != "" {
		set["suggestedSystem"] = upd.SuggestedSystem
	} else if upd.Status == models.MigrationStatusCompleted {
		unset["suggestedSystem"] = ""
	}
	if upd.Confidence > 0 {
		set["systemMigrationConfidence"] = upd.Confidence
	}
	if upd.MatchType != "" {
		set["systemMigrationMatchType"] = upd.MatchType
	}
	if upd.MigrationID != "" {
		set["migrationId"] = upd.MigrationID
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	if err := r.mongoRepo.UpdateOne(ctx, questsCollection, bson.M{"_id": questID}, update); err != nil {
		return fmt.Errorf("failed to update quest standardization: %w", err)
	}
	return nil
}

// ListQuestsForCleanup returns quests whose migration status is pending,
// failed, or missing entirely.
func (r *QuestsRepository) ListQuestsForCleanup(ctx context.Context, limit int) ([]models.Quest, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"systemMigrationStatus": bson.M{"$in": bson.A{
			models.MigrationStatusPending, models.MigrationStatusFailed,
		}}},
		bson.M{"systemMigrationStatus": bson.M{"$exists": false}},
	}}

	opts := findLimit(limit)
	cursor, err := r.mongoRepo.FindMany(ctx, questsCollection, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests for cleanup: %w", err)
	}
	defer cursor.Close(ctx)

	var quests []models.Quest
	if err := cursor.All(ctx, &quests); err != nil {
		return nil, fmt.Errorf("failed to decode quests: %w", err)
	}

	return quests, nil
}

func (r *QuestsRepository) CountByMigrationStatus(ctx context.Context, status string) (int, error) {
	count, err := r.mongoRepo.CountDocuments(ctx, questsCollection, bson.M{"systemMigrationStatus": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count quests by status: %w", err)
	}
	return int(count), nil
}

func (r *QuestsRepository) CountQuests(ctx context.Context) (int, error) {
	count, err := r.mongoRepo.CountDocuments(ctx, questsCollection, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count quests: %w", err)
	}
	return int(count), nil
}
