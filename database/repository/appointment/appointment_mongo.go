package appointmentRepo

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

// MongoAppointmentRepo implements Repository using MongoDB.
type MongoAppointmentRepo struct {
	apptColl   *mongo.Collection
	callerColl *mongo.Collection
	lockColl   *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new instance of MongoAppointmentRepo.
func NewMongoAppointmentRepo() *MongoAppointmentRepo {
	db := database.MongoClient.Database(database.DatabaseName)
	repo := &MongoAppointmentRepo{
		apptColl:   db.Collection("appointments"),
		callerColl: db.Collection("callers"),
		lockColl:   db.Collection("booking_locks"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("appointment repo: failed to create indexes: %v", err)
	}
	return repo
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (repo *MongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "appointment_date", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "caller_phone", Value: 1}}},
	}

	_, err := repo.apptColl.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts the appointment inside a transaction that re-validates the
// conflict check against every non-cancelled appointment on the same date.
// The snapshot re-check alone cannot see a concurrent uncommitted insert, so
// every transaction also bumps the date's lock document: two writers for the
// same date then conflict on that shared document, one of them retries via
// WithTransaction, re-runs the check against the winner's committed insert,
// and fails with ErrSlotTaken.
func (repo *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) (string, error) {
	startMin, err := utils.MinutesOfDay(appt.AppointmentTime)
	if err != nil {
		return "", fmt.Errorf("invalid appointment time %q: %w", appt.AppointmentTime, err)
	}
	endMin := startMin + appt.DurationMinutes

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	appt.Status = models.StatusScheduled
	appt.CreatedAt = time.Now()

	client := repo.apptColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return "", fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		lockUpdate := bson.M{"$inc": bson.M{"version": 1}}
		lockOpts := options.Update().SetUpsert(true)
		if _, err := repo.lockColl.UpdateOne(sc, bson.M{"_id": appt.AppointmentDate}, lockUpdate, lockOpts); err != nil {
			return nil, fmt.Errorf("date lock update failed: %w", err)
		}

		filter := bson.M{
			"appointment_date": appt.AppointmentDate,
			"status":           bson.M{"$ne": models.StatusCancelled},
		}
		cursor, err := repo.apptColl.Find(sc, filter)
		if err != nil {
			return nil, fmt.Errorf("conflict check failed: %w", err)
		}
		defer cursor.Close(sc)
		for cursor.Next(sc) {
			var existing models.Appointment
			if err := cursor.Decode(&existing); err != nil {
				return nil, fmt.Errorf("error decoding appointment: %w", err)
			}
			if conflictsWith(existing, startMin, endMin) {
				return nil, ErrSlotTaken
			}
		}
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("cursor error: %w", err)
		}

		if _, err := repo.apptColl.InsertOne(sc, appt); err != nil {
			return nil, fmt.Errorf("insert appointment failed: %w", err)
		}

		if appt.CallerID != "" {
			update := bson.M{"$inc": bson.M{"total_appointments": 1}}
			if _, err := repo.callerColl.UpdateOne(sc, bson.M{"id": appt.CallerID}, update); err != nil {
				return nil, fmt.Errorf("caller counter update failed: %w", err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return "", err
	}

	return appt.ID, nil
}

// GetByID retrieves an appointment document by ID.
func (repo *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := repo.apptColl.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching appointment with id %s: %w", id, err)
	}
	return &appt, nil
}

// GetForDate retrieves non-cancelled appointments for a date, time ascending.
func (repo *MongoAppointmentRepo) GetForDate(ctx context.Context, date string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"appointment_date": date,
		"status":           bson.M{"$ne": models.StatusCancelled},
	}
	opts := options.Find().SetSort(bson.D{{Key: "appointment_time", Value: 1}})
	cursor, err := repo.apptColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching appointments for %s: %w", date, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

// GetAll retrieves the most recently created appointments up to limit.
func (repo *MongoAppointmentRepo) GetAll(ctx context.Context, limit int64) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := repo.apptColl.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

// GetByCallerPhone retrieves a caller's appointments, newest first.
func (repo *MongoAppointmentRepo) GetByCallerPhone(ctx context.Context, phone string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "appointment_date", Value: -1},
		{Key: "appointment_time", Value: -1},
	})
	cursor, err := repo.apptColl.Find(ctx, bson.M{"caller_phone": phone}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching appointments for caller %s: %w", phone, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

// UpdateStatus moves an appointment to a new status after validating the
// transition against the status table.
func (repo *MongoAppointmentRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	appt, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := models.CanTransition(appt.Status, status); err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"status": status}}
	res, err := repo.apptColl.UpdateOne(ctx, bson.M{"id": id, "status": appt.Status}, update)
	if err != nil {
		return fmt.Errorf("error updating appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment %s changed concurrently, status not updated", id)
	}
	return nil
}
