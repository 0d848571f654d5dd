package service

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/repository"
	"alcyxob/weekly-routines/internal/repository/sqlite"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fixture struct {
	routineRepo  repository.RoutineRepository
	scheduleRepo repository.ScheduleRepository
	userRepo     repository.UserRepository
	routines     RoutineService
	schedule     ScheduleService
}

// newFixture wires both services over a throwaway SQLite database the same
// way cmd/server does.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(t.TempDir() + "/service.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		routineRepo:  sqlite.NewRoutineRepository(db),
		scheduleRepo: sqlite.NewScheduleRepository(db),
		userRepo:     sqlite.NewUserRepository(db),
	}
	f.routines = NewRoutineService(f.routineRepo, zap.NewNop())
	f.schedule = NewScheduleService(f.scheduleRepo, f.routines, zap.NewNop())
	f.routines.RegisterDeletionHook(f.schedule)
	return f
}

func (f *fixture) slotCount(t *testing.T, owner primitive.ObjectID) int {
	t.Helper()
	list, err := f.scheduleRepo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	return len(list)
}

// failingScheduleRepo wraps a real repository and fails selected calls.
type failingScheduleRepo struct {
	repository.ScheduleRepository
	failDeleteByRoutine error
}

func (r *failingScheduleRepo) DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) (int64, error) {
	if r.failDeleteByRoutine != nil {
		return 0, r.failDeleteByRoutine
	}
	return r.ScheduleRepository.DeleteByRoutineID(ctx, routineID)
}

// failingRoutineRepo fails reads with a store-level error.
type failingRoutineRepo struct {
	repository.RoutineRepository
	err error
}

func (r *failingRoutineRepo) GetByID(context.Context, primitive.ObjectID) (*domain.Routine, error) {
	return nil, r.err
}
