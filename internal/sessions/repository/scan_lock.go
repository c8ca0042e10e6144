package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"campusgate/pkg/config"
	"campusgate/pkg/model"
)

// ScanLockRepository backs the per-student serialization region around
// the ledger's read-then-write toggle. A duplicate-key insert means a
// scan for the same student is already in flight.
type ScanLockRepository interface {
	Create(ctx context.Context, lock *model.AdvisoryLock) error
	Delete(ctx context.Context, lockID string) error
}

type mongoScanLockRepository struct {
	collection *mongo.Collection
}

func NewScanLockRepository(cfg *config.Config) ScanLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScanLockRepository{
		collection: db.Collection("Scan_locks"),
	}
}

func (r *mongoScanLockRepository) Create(ctx context.Context, lock *model.AdvisoryLock) error {
	lock.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

func (r *mongoScanLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
