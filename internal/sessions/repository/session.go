package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	sessionserrors "campusgate/internal/sessions/errors"
	"campusgate/pkg/config"
	mongotx "campusgate/pkg/db/mongo"
	"campusgate/pkg/model"
)

const (
	CollectionName = "Sessions"

	// maxLogRows caps the admin logs listing.
	maxLogRows = 500
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindLatestByStudent(ctx context.Context, studentID string) (*model.Session, error)
	Close(ctx context.Context, id string, exitTime time.Time) error
	CloseAllOpen(ctx context.Context, exitTime time.Time) (int64, error)
	FindOpen(ctx context.Context) ([]*model.Session, error)
	FindLogs(ctx context.Context, filter model.LogFilter) ([]*model.Session, error)
	CountOpen(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoSessionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoSessionRepository(cfg *config.Config) SessionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSessionRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is already a
// transaction context, which must not be re-wrapped.
func (r *mongoSessionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *model.Session) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

// FindLatestByStudent returns the student's most recent session by
// creation order. ObjectIDs embed a creation timestamp, so a descending
// _id sort is latest-first.
func (r *mongoSessionRepository) FindLatestByStudent(ctx context.Context, studentID string) (*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})

	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"student_id": studentID}, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sessionserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest session: %w", err)
	}

	return &session, nil
}

func (r *mongoSessionRepository) Close(ctx context.Context, id string, exitTime time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", sessionserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"exit_time": exitTime,
		"status":    model.SessionStatusOut,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if result.MatchedCount == 0 {
		return sessionserrors.ErrNotFound
	}
	return nil
}

// CloseAllOpen stamps every open session with the given exit time in a
// single statement, so an in-flight scan can never observe a half-closed
// session.
func (r *mongoSessionRepository) CloseAllOpen(ctx context.Context, exitTime time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"exit_time": exitTime,
		"status":    model.SessionStatusOut,
	}}

	result, err := r.collection.UpdateMany(ctx, bson.M{"status": model.SessionStatusIn}, update)
	if err != nil {
		return 0, fmt.Errorf("failed to close open sessions: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoSessionRepository) FindOpen(ctx context.Context) ([]*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"status": model.SessionStatusIn, "exit_time": nil}
	opts := options.Find().SetSort(bson.D{{Key: "entry_time", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find open sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode open sessions: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepository) FindLogs(ctx context.Context, filter model.LogFilter) ([]*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query := bson.M{}
	if filter.StudentID != "" {
		query["student_id"] = filter.StudentID
	}
	if filter.From != nil || filter.To != nil {
		entryTime := bson.M{}
		if filter.From != nil {
			entryTime["$gte"] = *filter.From
		}
		if filter.To != nil {
			entryTime["$lte"] = *filter.To
		}
		query["entry_time"] = entryTime
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "entry_time", Value: -1}}).
		SetLimit(maxLogRows)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find session logs: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode session logs: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepository) CountOpen(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": model.SessionStatusIn})
	if err != nil {
		return 0, fmt.Errorf("failed to count open sessions: %w", err)
	}
	return count, nil
}

func (r *mongoSessionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
