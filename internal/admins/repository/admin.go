package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	adminserrors "campusgate/internal/admins/errors"
	"campusgate/pkg/config"
	"campusgate/pkg/model"
)

const CollectionName = "Admins"

type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Admin, error)
}

type mongoAdminRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAdminRepository(cfg *config.Config) AdminRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAdminRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAdminRepository) FindByUsername(ctx context.Context, username string) (*model.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var admin model.Admin
	err := r.collection.FindOne(ctx, bson.M{"_id": username}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, adminserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}

	return &admin, nil
}
