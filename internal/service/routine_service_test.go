package service

import (
	"alcyxob/weekly-routines/internal/domain"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestCreateRoutine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	routine, err := f.routines.CreateRoutine(ctx, owner, "  Push  ")
	require.NoError(t, err)
	assert.False(t, routine.ID.IsZero())
	assert.Equal(t, "Push", routine.Name)
	assert.Empty(t, routine.Exercises)
	assert.Equal(t, routine.CreatedAt, routine.UpdatedAt)

	_, err = f.routines.CreateRoutine(ctx, owner, "   ")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	list, err := f.routines.ListRoutines(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1, "rejected create must not persist anything")
}

func TestListRoutinesUnknownOwner(t *testing.T) {
	f := newFixture(t)
	list, err := f.routines.ListRoutines(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetRoutineByIDAbsentIsNotAnError(t *testing.T) {
	f := newFixture(t)
	routine, err := f.routines.GetRoutineByID(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, routine)
}

func TestGetOwnedRoutineHidesOtherOwners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	r, err := f.routines.CreateRoutine(ctx, alice, "Alice's")
	require.NoError(t, err)

	got, err := f.routines.GetOwnedRoutine(ctx, alice, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, err = f.routines.GetOwnedRoutine(ctx, bob, r.ID)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestSetExercisesRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.routines.CreateRoutine(ctx, primitive.NewObjectID(), "Leg Day")
	require.NoError(t, err)

	written := domain.Exercise{ID: "sq", Name: "Squat", Sets: 4, Reps: 10, Weight: 40}
	_, err = f.routines.SetExercises(ctx, created.ID, "Leg Day", []domain.Exercise{written})
	require.NoError(t, err)

	got, err := f.routines.GetRoutineByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, written, got.Exercises[0])
	assert.True(t, got.UpdatedAt.After(got.CreatedAt), "updatedAt %v must be after createdAt %v", got.UpdatedAt, got.CreatedAt)
}

func TestSetExercisesValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.routines.CreateRoutine(ctx, primitive.NewObjectID(), "Pull")
	require.NoError(t, err)
	prior := []domain.Exercise{{ID: "row", Name: "Row", Sets: 3, Reps: 8, Weight: 50}}
	_, err = f.routines.SetExercises(ctx, r.ID, "Pull", prior)
	require.NoError(t, err)

	valid := []struct {
		sets, reps int
		weight     float64
	}{
		{1, 1, 0}, {5, 5, 102.5}, {10, 20, 0.25},
	}
	for _, v := range valid {
		_, err := f.routines.SetExercises(ctx, r.ID, "Pull", []domain.Exercise{
			{ID: "row", Name: "Row", Sets: v.sets, Reps: v.reps, Weight: v.weight},
		})
		require.NoError(t, err, "%+v", v)
	}
	// restore the baseline for the rejection cases
	_, err = f.routines.SetExercises(ctx, r.ID, "Pull", prior)
	require.NoError(t, err)

	invalid := []struct {
		name string
		ex   domain.Exercise
	}{
		{"zero sets", domain.Exercise{Name: "Curl", Sets: 0, Reps: 10, Weight: 10}},
		{"zero reps", domain.Exercise{Name: "Curl", Sets: 3, Reps: 0, Weight: 10}},
		{"negative weight", domain.Exercise{Name: "Curl", Sets: 3, Reps: 10, Weight: -1}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			good := domain.Exercise{ID: "ok", Name: "Shrug", Sets: 3, Reps: 12, Weight: 30}
			_, err := f.routines.SetExercises(ctx, r.ID, "Renamed", []domain.Exercise{good, tt.ex})
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)

			got, err := f.routines.GetRoutineByID(ctx, r.ID)
			require.NoError(t, err)
			assert.Equal(t, "Pull", got.Name)
			assert.Equal(t, prior, got.Exercises)
		})
	}

	_, err = f.routines.SetExercises(ctx, r.ID, " ", prior)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSetExercisesAssignsMissingIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.routines.CreateRoutine(ctx, primitive.NewObjectID(), "Core")
	require.NoError(t, err)

	updated, err := f.routines.SetExercises(ctx, r.ID, "Core", []domain.Exercise{
		{Name: "Plank", Sets: 3, Reps: 1, Weight: 0},
		{Name: "Crunch", Sets: 3, Reps: 20, Weight: 0},
	})
	require.NoError(t, err)
	require.Len(t, updated.Exercises, 2)
	assert.NotEmpty(t, updated.Exercises[0].ID)
	assert.NotEqual(t, updated.Exercises[0].ID, updated.Exercises[1].ID)
}

func TestSetExercisesOnMissingRoutine(t *testing.T) {
	f := newFixture(t)
	_, err := f.routines.SetExercises(context.Background(), primitive.NewObjectID(), "Ghost", nil)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "routine", nf.Resource)
}

func TestExerciseHelpers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r, err := f.routines.CreateRoutine(ctx, primitive.NewObjectID(), "Full Body")
	require.NoError(t, err)

	r, err = f.routines.AddExercise(ctx, r.ID, domain.Exercise{ID: "a", Name: "Squat", Sets: 5, Reps: 5, Weight: 100})
	require.NoError(t, err)
	r, err = f.routines.AddExercise(ctx, r.ID, domain.Exercise{Name: "Bench", Sets: 5, Reps: 5, Weight: 70})
	require.NoError(t, err)
	require.Len(t, r.Exercises, 2)
	assert.Equal(t, "Squat", r.Exercises[0].Name, "insertion order is kept")
	benchID := r.Exercises[1].ID

	r, err = f.routines.UpdateExercise(ctx, r.ID, domain.Exercise{ID: benchID, Name: "Bench", Sets: 3, Reps: 8, Weight: 65})
	require.NoError(t, err)
	assert.Equal(t, 8, r.Exercises[1].Reps)

	_, err = f.routines.UpdateExercise(ctx, r.ID, domain.Exercise{ID: "missing", Name: "X", Sets: 1, Reps: 1})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "exercise", nf.Resource)

	_, err = f.routines.AddExercise(ctx, r.ID, domain.Exercise{ID: "a", Name: "Dup", Sets: 1, Reps: 1})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve, "duplicate exercise id within a routine")

	r, err = f.routines.RemoveExercise(ctx, r.ID, "a")
	require.NoError(t, err)
	require.Len(t, r.Exercises, 1)
	assert.Equal(t, benchID, r.Exercises[0].ID)

	_, err = f.routines.RemoveExercise(ctx, r.ID, "a")
	require.ErrorAs(t, err, &nf)

	stored, err := f.routines.GetRoutineByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Exercises, stored.Exercises)
}

func TestUpdatedAtStrictlyIncreases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	frozen := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	f.routines.(*routineService).now = func() time.Time { return frozen }

	r, err := f.routines.CreateRoutine(ctx, primitive.NewObjectID(), "Same ms")
	require.NoError(t, err)
	prev := r.UpdatedAt
	for i := 0; i < 3; i++ {
		r, err = f.routines.SetExercises(ctx, r.ID, "Same ms", nil)
		require.NoError(t, err)
		assert.True(t, r.UpdatedAt.After(prev))
		prev = r.UpdatedAt
	}
}

func TestDeleteRoutineCascadeFailureKeepsRoutine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	broken := &failingScheduleRepo{ScheduleRepository: f.scheduleRepo, failDeleteByRoutine: errors.New("connection reset")}
	routines := NewRoutineService(f.routineRepo, zap.NewNop())
	schedule := NewScheduleService(broken, routines, zap.NewNop())
	routines.RegisterDeletionHook(schedule)

	r, err := routines.CreateRoutine(ctx, owner, "Keep me")
	require.NoError(t, err)
	_, err = schedule.Assign(ctx, owner, domain.Tuesday, r.ID)
	require.NoError(t, err)

	err = routines.DeleteRoutine(ctx, r.ID)
	var se *domain.StoreError
	require.ErrorAs(t, err, &se)

	still, err := routines.GetRoutineByID(ctx, r.ID)
	require.NoError(t, err)
	assert.NotNil(t, still, "routine must survive a failed cascade")
	assert.Equal(t, 1, f.slotCount(t, owner))
}

func TestDeleteMissingRoutine(t *testing.T) {
	f := newFixture(t)
	err := f.routines.DeleteRoutine(context.Background(), primitive.NewObjectID())
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestStoreFailuresSurfaceAsStoreError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("store unreachable")
	routines := NewRoutineService(&failingRoutineRepo{RoutineRepository: f.routineRepo, err: boom}, zap.NewNop())

	_, err := routines.GetRoutineByID(context.Background(), primitive.NewObjectID())
	var se *domain.StoreError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, boom)

	_, err = routines.SetExercises(context.Background(), primitive.NewObjectID(), "x", nil)
	require.ErrorAs(t, err, &se)
}
