package mongo

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/metrics"
	"alcyxob/weekly-routines/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const scheduleCollectionName = "scheduled_assignments"

// mongoScheduleRepository implements repository.ScheduleRepository
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a new schedule repository backed by MongoDB.
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

// Replace upserts the slot document keyed by (ownerId, dayOfWeek). A single
// FindOneAndReplace is atomic on one document, so no reader ever sees the slot
// empty or bound twice in between. The slot keeps its _id across replaces.
func (r *mongoScheduleRepository) Replace(ctx context.Context, assignment *domain.ScheduledAssignment) (err error) {
	done := metrics.ObserveStore(metrics.BackendMongo, metrics.OpReplaceAssignment)
	defer func() { done(err) }()

	if assignment.OwnerID == primitive.NilObjectID || assignment.RoutineID == primitive.NilObjectID {
		return errors.New("assignment requires ownerId and routineId")
	}

	filter := bson.M{"ownerId": assignment.OwnerID, "dayOfWeek": assignment.DayOfWeek}
	replacement := bson.M{
		"ownerId":   assignment.OwnerID,
		"routineId": assignment.RoutineID,
		"dayOfWeek": assignment.DayOfWeek,
		"createdAt": assignment.CreatedAt,
	}
	opts := options.FindOneAndReplace().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.ScheduledAssignment
	err = r.collection.FindOneAndReplace(ctx, filter, replacement, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// Two upserts raced to create the slot; the loser now matches the winner's document.
		err = r.collection.FindOneAndReplace(ctx, filter, replacement, opts).Decode(&stored)
	}
	if err != nil {
		return err
	}
	assignment.ID = stored.ID
	return nil
}

// DeleteSlot removes whatever is bound to the owner's day.
func (r *mongoScheduleRepository) DeleteSlot(ctx context.Context, ownerID primitive.ObjectID, day domain.DayOfWeek) (_ int64, err error) {
	done := metrics.ObserveStore(metrics.BackendMongo, metrics.OpDeleteSlot)
	defer func() { done(err) }()

	result, err := r.collection.DeleteMany(ctx, bson.M{"ownerId": ownerID, "dayOfWeek": day})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteByRoutineID removes every assignment pointing at the routine, for any owner.
func (r *mongoScheduleRepository) DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) (_ int64, err error) {
	done := metrics.ObserveStore(metrics.BackendMongo, metrics.OpDeleteByRoutine)
	defer func() { done(err) }()

	result, err := r.collection.DeleteMany(ctx, bson.M{"routineId": routineID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// ListByOwner returns the owner's assignments ordered by day.
func (r *mongoScheduleRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) (_ []domain.ScheduledAssignment, err error) {
	done := metrics.ObserveStore(metrics.BackendMongo, metrics.OpListAssignments)
	defer func() { done(err) }()

	findOptions := options.Find().SetSort(bson.D{{Key: "dayOfWeek", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assignments := []domain.ScheduledAssignment{}
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// EnsureScheduleIndexes creates the unique slot index Replace relies on.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "dayOfWeek", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Cascade on routine delete
			Keys:    bson.D{{Key: "routineId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
