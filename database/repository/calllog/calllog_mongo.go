package calllogRepo

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

// MongoCallLogRepo implements Repository using MongoDB.
type MongoCallLogRepo struct {
	coll *mongo.Collection
}

// NewMongoCallLogRepo constructs a new instance of MongoCallLogRepo.
func NewMongoCallLogRepo() *MongoCallLogRepo {
	db := database.MongoClient.Database(database.DatabaseName)
	repo := &MongoCallLogRepo{coll: db.Collection("call_logs")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("call log repo: failed to create indexes: %v", err)
	}
	return repo
}

func (repo *MongoCallLogRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "call_sid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "started_at", Value: -1}}},
	}

	_, err := repo.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (repo *MongoCallLogRepo) Start(ctx context.Context, callSID, callerPhone string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$setOnInsert": bson.M{
			"id":           uuid.New().String(),
			"call_sid":     callSID,
			"caller_phone": callerPhone,
			"status":       models.CallInProgress,
			"turns":        0,
			"started_at":   time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := repo.coll.UpdateOne(ctx, bson.M{"call_sid": callSID}, update, opts); err != nil {
		return fmt.Errorf("error starting call log %s: %w", callSID, err)
	}
	return nil
}

func (repo *MongoCallLogRepo) SetStatus(ctx context.Context, callSID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": status}
	switch status {
	case models.CallCompleted, models.CallFailed, models.CallNoAnswer:
		set["ended_at"] = time.Now()
	}
	if _, err := repo.coll.UpdateOne(ctx, bson.M{"call_sid": callSID}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("error updating call log %s: %w", callSID, err)
	}
	return nil
}

func (repo *MongoCallLogRepo) IncrementTurns(ctx context.Context, callSID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$inc": bson.M{"turns": 1}}
	if _, err := repo.coll.UpdateOne(ctx, bson.M{"call_sid": callSID}, update); err != nil {
		return fmt.Errorf("error counting turn for call %s: %w", callSID, err)
	}
	return nil
}

func (repo *MongoCallLogRepo) GetRecent(ctx context.Context, limit int64) ([]models.CallLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching call logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []models.CallLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("error decoding call logs: %w", err)
	}
	return logs, nil
}
