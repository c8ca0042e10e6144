package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"campusgate/pkg/config"
	"campusgate/pkg/model"
)

// BookingLockRepository holds room-keyed advisory locks. A duplicate key
// error on Create means another request holds the room.
type BookingLockRepository interface {
	Create(ctx context.Context, lock *model.AdvisoryLock) error
	Delete(ctx context.Context, lockID string) error
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		collection: db.Collection("Booking_locks"),
	}
}

func (r *mongoBookingLockRepository) Create(ctx context.Context, lock *model.AdvisoryLock) error {
	lock.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

func (r *mongoBookingLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
