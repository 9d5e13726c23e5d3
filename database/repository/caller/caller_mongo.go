package callerRepo

import (
	"context"
	"fmt"
	"time"

	"receptionist/database"
	"receptionist/models"
	"receptionist/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCallerRepo implements Repository using MongoDB.
type MongoCallerRepo struct {
	coll *mongo.Collection
}

// NewMongoCallerRepo constructs a new instance of MongoCallerRepo.
func NewMongoCallerRepo() *MongoCallerRepo {
	db := database.MongoClient.Database(database.DatabaseName)
	repo := &MongoCallerRepo{coll: db.Collection("callers")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("caller repo: failed to create indexes: %v", err)
	}
	return repo
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (repo *MongoCallerRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone_number", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := repo.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetOrCreate upserts the caller record keyed on phone number and bumps the
// call counter in the same operation. The unique phone index makes two
// first-contact races converge on one document.
func (repo *MongoCallerRepo) GetOrCreate(ctx context.Context, phone string) (*models.Caller, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"phone_number": phone}
	update := bson.M{
		"$inc": bson.M{"total_calls": 1},
		"$set": bson.M{"last_call_at": now},
		"$setOnInsert": bson.M{
			"id":                 uuid.New().String(),
			"phone_number":       phone,
			"total_appointments": 0,
			"created_at":         now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var caller models.Caller
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&caller); err != nil {
		return nil, fmt.Errorf("error upserting caller %s: %w", phone, err)
	}
	return &caller, nil
}

// GetByPhone retrieves a caller document by phone number.
func (repo *MongoCallerRepo) GetByPhone(ctx context.Context, phone string) (*models.Caller, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var caller models.Caller
	if err := repo.coll.FindOne(ctx, bson.M{"phone_number": phone}).Decode(&caller); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching caller %s: %w", phone, err)
	}
	return &caller, nil
}

// UpdateName sets the caller's name.
func (repo *MongoCallerRepo) UpdateName(ctx context.Context, phone, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"name": name}}
	if _, err := repo.coll.UpdateOne(ctx, bson.M{"phone_number": phone}, update); err != nil {
		return fmt.Errorf("error updating caller name for %s: %w", phone, err)
	}
	return nil
}
