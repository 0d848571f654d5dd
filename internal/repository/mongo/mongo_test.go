package mongo

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/repository"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// testDatabase connects to TEST_MONGO_URI and hands out a throwaway database.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	client, err := ConnectDB(uri)
	require.NoError(t, err)

	db := client.Database("weekly_routines_test_" + primitive.NewObjectID().Hex())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = DisconnectDB(client)
	})
	return db
}

func TestRoutineRepositoryMongo(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoRoutineRepository(testDatabase(t))
	owner := primitive.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	routine := &domain.Routine{OwnerID: owner, Name: "Upper", Exercises: []domain.Exercise{}, CreatedAt: now, UpdatedAt: now}
	id, err := repo.Create(ctx, routine)
	require.NoError(t, err)

	routine.Exercises = []domain.Exercise{{ID: "ohp", Name: "Overhead Press", Sets: 3, Reps: 6, Weight: 37.5}}
	routine.UpdatedAt = now.Add(time.Second)
	require.NoError(t, repo.Update(ctx, routine))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, routine.Exercises, got.Exercises)
	assert.True(t, got.UpdatedAt.Equal(routine.UpdatedAt))

	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id), repository.ErrNotFound)
}

func TestScheduleReplaceKeepsOneDocumentPerSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoScheduleRepository(testDatabase(t))
	owner := primitive.NewObjectID()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Replace(ctx, &domain.ScheduledAssignment{
				OwnerID:   owner,
				RoutineID: primitive.NewObjectID(),
				DayOfWeek: domain.Monday,
				CreatedAt: time.Now().UTC(),
			})
		}()
	}
	wg.Wait()

	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	removed, err := repo.DeleteByRoutineID(ctx, list[0].RoutineID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	removed, err = repo.DeleteSlot(ctx, owner, domain.Monday)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestUserRepositoryMongoUniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMongoUserRepository(testDatabase(t))

	_, err := repo.Create(ctx, &domain.User{DisplayName: "A", Email: "a@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.User{DisplayName: "B", Email: "a@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "A", got.DisplayName)
}
