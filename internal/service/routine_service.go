package service

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/metrics"
	"alcyxob/weekly-routines/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const resourceRoutine = "routine"

// RoutineDeletionHook is invoked as part of deleting a routine. The schedule
// service implements it to purge assignments that point at the routine.
type RoutineDeletionHook interface {
	CascadeOnRoutineDelete(ctx context.Context, routineID primitive.ObjectID) error
}

// RoutineService owns routines and their exercise lists.
type RoutineService interface {
	CreateRoutine(ctx context.Context, ownerID primitive.ObjectID, name string) (*domain.Routine, error)
	ListRoutines(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Routine, error)
	// GetRoutineByID returns (nil, nil) when the routine does not exist.
	GetRoutineByID(ctx context.Context, routineID primitive.ObjectID) (*domain.Routine, error)
	// GetOwnedRoutine returns a NotFoundError unless the routine exists and belongs to ownerID.
	GetOwnedRoutine(ctx context.Context, ownerID, routineID primitive.ObjectID) (*domain.Routine, error)
	SetExercises(ctx context.Context, routineID primitive.ObjectID, name string, exercises []domain.Exercise) (*domain.Routine, error)
	AddExercise(ctx context.Context, routineID primitive.ObjectID, exercise domain.Exercise) (*domain.Routine, error)
	UpdateExercise(ctx context.Context, routineID primitive.ObjectID, exercise domain.Exercise) (*domain.Routine, error)
	RemoveExercise(ctx context.Context, routineID primitive.ObjectID, exerciseID string) (*domain.Routine, error)
	DeleteRoutine(ctx context.Context, routineID primitive.ObjectID) error
	// RegisterDeletionHook must be called during wiring, before requests are served.
	RegisterDeletionHook(hook RoutineDeletionHook)
}

type routineService struct {
	routineRepo repository.RoutineRepository
	hooks       []RoutineDeletionHook
	logger      *zap.Logger
	now         func() time.Time
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(routineRepo repository.RoutineRepository, logger *zap.Logger) RoutineService {
	return &routineService{
		routineRepo: routineRepo,
		logger:      logger.Named("routines"),
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

func (s *routineService) RegisterDeletionHook(hook RoutineDeletionHook) {
	s.hooks = append(s.hooks, hook)
}

// CreateRoutine persists a new routine with an empty exercise list.
func (s *routineService) CreateRoutine(ctx context.Context, ownerID primitive.ObjectID, name string) (*domain.Routine, error) {
	if ownerID == primitive.NilObjectID {
		return nil, &domain.ValidationError{Field: "ownerId", Message: "is required"}
	}
	name, err := domain.NormalizeRoutineName(name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	routine := &domain.Routine{
		OwnerID:   ownerID,
		Name:      name,
		Exercises: []domain.Exercise{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.routineRepo.Create(ctx, routine); err != nil {
		return nil, storeError("create routine", err)
	}

	metrics.RoutinesCreatedTotal.Inc()
	s.logger.Debug("routine created",
		zap.String("routineId", routine.ID.Hex()),
		zap.String("ownerId", ownerID.Hex()))
	return routine, nil
}

// ListRoutines returns the owner's routines; an unknown owner simply has none.
func (s *routineService) ListRoutines(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Routine, error) {
	routines, err := s.routineRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("list routines", err)
	}
	if routines == nil {
		routines = []domain.Routine{}
	}
	return routines, nil
}

func (s *routineService) GetRoutineByID(ctx context.Context, routineID primitive.ObjectID) (*domain.Routine, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, storeError("get routine", err)
	}
	return routine, nil
}

func (s *routineService) GetOwnedRoutine(ctx context.Context, ownerID, routineID primitive.ObjectID) (*domain.Routine, error) {
	routine, err := s.GetRoutineByID(ctx, routineID)
	if err != nil {
		return nil, err
	}
	// Someone else's routine is reported exactly like a missing one.
	if routine == nil || routine.OwnerID != ownerID {
		return nil, &domain.NotFoundError{Resource: resourceRoutine, ID: routineID.Hex()}
	}
	return routine, nil
}

// SetExercises replaces the routine's name and whole exercise list. Everything
// is validated before the store is touched, so a rejected call writes nothing.
func (s *routineService) SetExercises(ctx context.Context, routineID primitive.ObjectID, name string, exercises []domain.Exercise) (*domain.Routine, error) {
	name, err := domain.NormalizeRoutineName(name)
	if err != nil {
		return nil, err
	}
	normalized := normalizeExercises(exercises)
	if err := domain.ValidateExercises(normalized); err != nil {
		return nil, err
	}

	existing, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return nil, translate("get routine", resourceRoutine, routineID, err)
	}
	return s.write(ctx, existing, name, normalized)
}

func (s *routineService) AddExercise(ctx context.Context, routineID primitive.ObjectID, exercise domain.Exercise) (*domain.Routine, error) {
	if err := exercise.Validate(); err != nil {
		return nil, err
	}
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return nil, translate("get routine", resourceRoutine, routineID, err)
	}

	exercises := make([]domain.Exercise, 0, len(routine.Exercises)+1)
	exercises = append(exercises, routine.Exercises...)
	exercises = append(exercises, exercise)
	return s.SetExercises(ctx, routineID, routine.Name, exercises)
}

func (s *routineService) UpdateExercise(ctx context.Context, routineID primitive.ObjectID, exercise domain.Exercise) (*domain.Routine, error) {
	if strings.TrimSpace(exercise.ID) == "" {
		return nil, &domain.ValidationError{Field: "id", Message: "is required to edit an exercise"}
	}
	if err := exercise.Validate(); err != nil {
		return nil, err
	}
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return nil, translate("get routine", resourceRoutine, routineID, err)
	}

	idx := routine.ExerciseIndex(strings.TrimSpace(exercise.ID))
	if idx < 0 {
		return nil, &domain.NotFoundError{Resource: "exercise", ID: exercise.ID}
	}
	exercises := append([]domain.Exercise(nil), routine.Exercises...)
	exercises[idx] = exercise
	return s.SetExercises(ctx, routineID, routine.Name, exercises)
}

func (s *routineService) RemoveExercise(ctx context.Context, routineID primitive.ObjectID, exerciseID string) (*domain.Routine, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		return nil, translate("get routine", resourceRoutine, routineID, err)
	}

	idx := routine.ExerciseIndex(exerciseID)
	if idx < 0 {
		return nil, &domain.NotFoundError{Resource: "exercise", ID: exerciseID}
	}
	exercises := make([]domain.Exercise, 0, len(routine.Exercises)-1)
	exercises = append(exercises, routine.Exercises[:idx]...)
	exercises = append(exercises, routine.Exercises[idx+1:]...)
	return s.SetExercises(ctx, routineID, routine.Name, exercises)
}

// DeleteRoutine cascades into the registered hooks before removing the record,
// so a failed cascade leaves the routine in place rather than orphaning
// assignments. The hooks run once more afterwards to catch an assign that
// raced the delete.
func (s *routineService) DeleteRoutine(ctx context.Context, routineID primitive.ObjectID) error {
	for _, hook := range s.hooks {
		if err := hook.CascadeOnRoutineDelete(ctx, routineID); err != nil {
			return err
		}
	}

	if err := s.routineRepo.Delete(ctx, routineID); err != nil {
		return translate("delete routine", resourceRoutine, routineID, err)
	}
	metrics.RoutinesDeletedTotal.Inc()

	for _, hook := range s.hooks {
		if err := hook.CascadeOnRoutineDelete(ctx, routineID); err != nil {
			s.logger.Warn("post-delete cascade sweep failed",
				zap.String("routineId", routineID.Hex()),
				zap.Error(err))
		}
	}
	return nil
}

func (s *routineService) write(ctx context.Context, existing *domain.Routine, name string, exercises []domain.Exercise) (*domain.Routine, error) {
	updated := *existing
	updated.Name = name
	updated.Exercises = exercises
	updated.UpdatedAt = s.nextUpdatedAt(existing.UpdatedAt)

	if err := s.routineRepo.Update(ctx, &updated); err != nil {
		return nil, translate("update routine", resourceRoutine, existing.ID, err)
	}
	return &updated, nil
}

// nextUpdatedAt keeps updatedAt strictly increasing even when two writes land
// within the store's millisecond precision.
func (s *routineService) nextUpdatedAt(prev time.Time) time.Time {
	next := s.now()
	if !next.After(prev) {
		next = prev.Add(time.Millisecond)
	}
	return next
}

// normalizeExercises trims text fields and gives id-less exercises a fresh id.
func normalizeExercises(exercises []domain.Exercise) []domain.Exercise {
	out := make([]domain.Exercise, len(exercises))
	for i, ex := range exercises {
		ex.ID = strings.TrimSpace(ex.ID)
		ex.Name = strings.TrimSpace(ex.Name)
		if ex.ID == "" {
			ex.ID = uuid.NewString()
		}
		out[i] = ex
	}
	return out
}
