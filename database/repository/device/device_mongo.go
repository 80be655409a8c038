package deviceRepo

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

// MongoDeviceRepo implements DeviceRepository using MongoDB.
type MongoDeviceRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceRepo creates a new instance of DeviceRepository using MongoDB.
func NewMongoDeviceRepo() DeviceRepository {
	coll := database.MongoClient.Database("notewise").Collection("devices")
	repo := &MongoDeviceRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoDeviceRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "deviceId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoDeviceRepo) Upsert(ctx context.Context, device *models.Device) error {
	update := bson.M{
		"$set": bson.M{
			"deviceName": device.DeviceName,
			"fcmToken":   device.FCMToken,
			"ip":         device.IP,
			"lastSeen":   device.LastSeen,
		},
		"$setOnInsert": bson.M{
			"deviceId":  device.DeviceID,
			"createdAt": device.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, bson.M{"deviceId": device.DeviceID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", device.DeviceID, err)
	}
	return nil
}

func (r *MongoDeviceRepo) GetByID(ctx context.Context, deviceID string) (*models.Device, error) {
	var device models.Device
	if err := r.coll.FindOne(ctx, bson.M{"deviceId": deviceID}).Decode(&device); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch device %s: %w", deviceID, err)
	}
	return &device, nil
}

func (r *MongoDeviceRepo) SetPINHash(ctx context.Context, deviceID, hash string) error {
	update := bson.M{"$set": bson.M{"pinHash": hash}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"deviceId": deviceID}, update)
	if err != nil {
		return fmt.Errorf("failed to set PIN for device %s: %w", deviceID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("device %s not found", deviceID)
	}
	return nil
}

func (r *MongoDeviceRepo) Delete(ctx context.Context, deviceID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"deviceId": deviceID}); err != nil {
		return fmt.Errorf("failed to delete device %s: %w", deviceID, err)
	}
	return nil
}
