// internal/repository/mongo/routine_repo.go
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

const routineCollectionName = "routines"

// mongoRoutineRepository implements repository.RoutineRepository
type mongoRoutineRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineRepository creates a new Routine repository.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		collection: db.Collection(routineCollectionName),
	}
}

// Create inserts a new routine. The exercise list is embedded in the document.
func (r *mongoRoutineRepository) Create(ctx context.Context, routine *domain.Routine) (id primitive.ObjectID, err error) {
	done := metrics.ObserveStore(metrics.BackendMongo, metrics.OpCreateRoutine)
	defer func() { done(err) }()

	if routine.OwnerID == primitive.NilObjectID || routine.Name == "" {
		return primitive.NilObjectID, errors.New("routine requires ownerId and name")
	}
	routine.ID = primitive.NewObjectID()
	if routine.Exercises == nil {
		routine.Exercises = []domain.Exercise{}
	}

	result, err := r.collection.InsertOne(ctx, routine)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted routine ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single routine by its ID.
func (r *mongoRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (_ *domain.Routine, err error) {
	done := metrics.ObserveStore(metrics.BackendMongo, metrics.OpGetRoutine)
	defer func() { done(ignoreNotFound(err)) }()

	var routine domain.Routine
	err = r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// ListByOwner retrieves every routine of one owner, oldest first.
func (r *mongoRoutineRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) (_ []domain.Routine, err error) {
	done := metrics.ObserveStore(metrics.BackendMongo, metrics.OpListRoutines)
	defer func() { done(err) }()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	routines := []domain.Routine{}
	if err = cursor.All(ctx, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

// Update replaces the routine's name and exercise list in one document write.
func (r *mongoRoutineRepository) Update(ctx context.Context, routine *domain.Routine) (err error) {
	done := metrics.ObserveStore(metrics.BackendMongo, metrics.OpUpdateRoutine)
	defer func() { done(ignoreNotFound(err)) }()

	if routine.ID == primitive.NilObjectID {
		return errors.New("routine ID is required for update")
	}
	exercises := routine.Exercises
	if exercises == nil {
		exercises = []domain.Exercise{}
	}

	update := bson.M{
		"$set": bson.M{
			"name":      routine.Name,
			"exercises": exercises,
			"updatedAt": routine.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": routine.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a routine. Schedule cleanup is the caller's job.
func (r *mongoRoutineRepository) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	done := metrics.ObserveStore(metrics.BackendMongo, metrics.OpDeleteRoutine)
	defer func() { done(ignoreNotFound(err)) }()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureRoutineIndexes creates necessary indexes. Call during startup.
func EnsureRoutineIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// ignoreNotFound keeps expected misses out of the store error counter.
func ignoreNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}
