package repository

import (
	"context"

	mongoInfra "github.com/parchmentlabs/questmatch/internal/infra/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoRepository(client *mongoInfra.Client) *MongoRepository {
	return &MongoRepository{
		client: client.Client,
		db:     client.Database,
	}
}

func (r *MongoRepository) InsertOne(ctx context.Context, collection string, document interface{}, opts ...*options.InsertOneOptions) error {
	_, err := r.db.Collection(collection).InsertOne(ctx, document, opts...)
	return err
}

func (r *MongoRepository) FindOne(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	return r.db.Collection(collection).FindOne(ctx, filter, opts...)
}

func (r *MongoRepository) FindMany(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	return r.db.Collection(collection).Find(ctx, filter, opts...)
}

func (r *MongoRepository) UpdateOne(ctx context.Context, collection string, filter, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := r.db.Collection(collection).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (r *MongoRepository) CountDocuments(ctx context.Context, collection string, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return r.db.Collection(collection).CountDocuments(ctx, filter, opts...)
}

func (r *MongoRepository) GetCollection(collectionName string) *mongo.Collection {
	return r.db.Collection(collectionName)
}

// WithTransaction runs fn inside a MongoDB transaction. Used where derived
// state must be replaced as one atomic unit.
func (r *MongoRepository) WithTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func findLimit(limit int) []*options.FindOptions {
	if limit <= 0 {
		return nil
	}
	return []*options.FindOptions{options.Find().SetLimit(int64(limit))}
}
