package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	studentserrors "campusgate/internal/students/errors"
	"campusgate/pkg/config"
	"campusgate/pkg/model"
)

const CollectionName = "Students"

type StudentRepository interface {
	FindByID(ctx context.Context, studentID string) (*model.Student, error)
	FindByIDs(ctx context.Context, studentIDs []string) (map[string]*model.Student, error)
	FindAll(ctx context.Context) ([]*model.Student, error)
	Exists(ctx context.Context, studentID string) (bool, error)
}

type mongoStudentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStudentRepository(cfg *config.Config) StudentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStudentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoStudentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoStudentRepository) FindByID(ctx context.Context, studentID string) (*model.Student, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var student model.Student
	err := r.collection.FindOne(ctx, bson.M{"_id": studentID}).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, studentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find student: %w", err)
	}

	return &student, nil
}

// FindByIDs returns the students keyed by ID; unknown IDs are simply
// absent from the map.
func (r *mongoStudentRepository) FindByIDs(ctx context.Context, studentIDs []string) (map[string]*model.Student, error) {
	result := map[string]*model.Student{}
	if len(studentIDs) == 0 {
		return result, nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": studentIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer cursor.Close(ctx)

	students := []*model.Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("failed to decode students: %w", err)
	}

	for _, s := range students {
		result[s.StudentID] = s
	}
	return result, nil
}

func (r *mongoStudentRepository) FindAll(ctx context.Context) ([]*model.Student, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer cursor.Close(ctx)

	students := []*model.Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("failed to decode students: %w", err)
	}
	return students, nil
}

func (r *mongoStudentRepository) Exists(ctx context.Context, studentID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": studentID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return count > 0, nil
}
