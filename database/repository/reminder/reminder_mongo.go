package reminderRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notewise/database"
	"notewise/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoReminderRepo implements ReminderRepository using MongoDB.
type MongoReminderRepo struct {
	coll *mongo.Collection
}

// NewMongoReminderRepo creates a new instance of ReminderRepository using MongoDB.
func NewMongoReminderRepo() ReminderRepository {
	coll := database.MongoClient.Database("notewise").Collection("reminders")
	repo := &MongoReminderRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// ensureIndexes creates the index backing the due-record scan.
func (r *MongoReminderRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sendAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoReminderRepo) Upsert(ctx context.Context, rec *models.ReminderRecord) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": rec.NoteID}, rec, opts); err != nil {
		return fmt.Errorf("failed to upsert reminder for note %s: %w", rec.NoteID, err)
	}
	return nil
}

func (r *MongoReminderRepo) GetByNoteID(ctx context.Context, noteID string) (*models.ReminderRecord, error) {
	var rec models.ReminderRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": noteID}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch reminder for note %s: %w", noteID, err)
	}
	return &rec, nil
}

func (r *MongoReminderRepo) FindDue(ctx context.Context, now int64) ([]models.ReminderRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"sendAt": bson.M{"$lte": now}})
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.ReminderRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode due reminders: %w", err)
	}
	return records, nil
}

func (r *MongoReminderRepo) Rearm(ctx context.Context, noteID string, sendAt int64, rule models.Reminder) error {
	update := bson.M{"$set": bson.M{"sendAt": sendAt, "reminder": rule}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": noteID}, update)
	if err != nil {
		return fmt.Errorf("failed to re-arm reminder for note %s: %w", noteID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reminder for note %s no longer exists", noteID)
	}
	return nil
}

func (r *MongoReminderRepo) Delete(ctx context.Context, noteID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": noteID}); err != nil {
		return fmt.Errorf("failed to delete reminder for note %s: %w", noteID, err)
	}
	return nil
}
