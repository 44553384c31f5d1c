package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parchmentlabs/questmatch/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	systemsCollection       = "game_systems"
	feedbackCollection      = "mapping_feedback"
	migrationLogsCollection = "migration_logs"
)

type SystemsRepository struct {
	mongoRepo *MongoRepository
}

func NewSystemsRepository(mongoRepo *MongoRepository) *SystemsRepository {
	return &SystemsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *SystemsRepository) ListGameSystems(ctx context.Context) ([]models.GameSystem, error) {
	cursor, err := r.mongoRepo.FindMany(ctx, systemsCollection, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list game systems: %w", err)
	}
	defer cursor.Close(ctx)

	var systems []models.GameSystem
	if err := cursor.All(ctx, &systems); err != nil {
		return nil, fmt.Errorf("failed to decode game systems: %w", err)
	}

	return systems, nil
}

// GetByStandardName returns (nil, nil) when no system carries the name.
func (r *SystemsRepository) GetByStandardName(ctx context.Context, standardName string) (*models.GameSystem, error) {
	filter := bson.M{"standardName": standardName}

	var system models.GameSystem
	err := r.mongoRepo.FindOne(ctx, systemsCollection, filter).Decode(&system)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find game system: %w", err)
	}

	return &system, nil
}

// AppendAliasIfAbsent adds alias to the system's alias list. $addToSet keeps
// the write idempotent under repeated feedback for the same mapping.
func (r *SystemsRepository) AppendAliasIfAbsent(ctx context.Context, systemID, alias string) error {
	update := bson.M{
		"$addToSet": bson.M{"aliases": alias},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	if err := r.mongoRepo.UpdateOne(ctx, systemsCollection, bson.M{"_id": systemID}, update); err != nil {
		return fmt.Errorf("failed to append alias: %w", err)
	}
	return nil
}

// InsertFeedback stores a feedback record, assigning an id when the caller
// left it empty, and returns the id.
func (r *SystemsRepository) InsertFeedback(ctx context.Context, fb *models.MappingFeedback) (string, error) {
	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	if err := r.mongoRepo.InsertOne(ctx, feedbackCollection, fb); err != nil {
		return "", fmt.Errorf("failed to insert mapping feedback: %w", err)
	}
	return fb.ID, nil
}

func (r *SystemsRepository) UpdateFeedbackStatus(ctx context.Context, feedbackID, status, note string) error {
	update := bson.M{"$set": bson.M{
		"status":      status,
		"note":        note,
		"processedAt": time.Now(),
	}}
	if err := r.mongoRepo.UpdateOne(ctx, feedbackCollection, bson.M{"_id": feedbackID}, update); err != nil {
		return fmt.Errorf("failed to update feedback status: %w", err)
	}
	return nil
}

func (r *SystemsRepository) InsertMigrationLog(ctx context.Context, ml *models.MigrationLog) error {
	if err := r.mongoRepo.InsertOne(ctx, migrationLogsCollection, ml); err != nil {
		return fmt.Errorf("failed to insert migration log: %w", err)
	}
	return nil
}

func (r *SystemsRepository) UpdateMigrationLog(ctx context.Context, ml *models.MigrationLog) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.mongoRepo.GetCollection(migrationLogsCollection).
		ReplaceOne(ctx, bson.M{"_id": ml.ID}, ml, opts); err != nil {
		return fmt.Errorf("failed to update migration log: %w", err)
	}
	return nil
}
