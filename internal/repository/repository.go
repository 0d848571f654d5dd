package repository

import (
	"alcyxob/weekly-routines/internal/domain" // Import our defined domain models
	"context"                                 // Standard for request-scoped deadlines, cancellation signals, etc.

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// RoutineRepository stores routines together with their exercise lists.
// Timestamps are supplied by the caller; Create only assigns the ID.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Routine, error)
	// Update replaces name, exercises and updatedAt. ErrNotFound if the routine is gone.
	Update(ctx context.Context, routine *domain.Routine) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ScheduleRepository stores day-of-week assignments.
type ScheduleRepository interface {
	// Replace binds the assignment's (ownerId, dayOfWeek) slot to its routine,
	// retiring any prior binding in the same atomic step. ID is set on success.
	Replace(ctx context.Context, assignment *domain.ScheduledAssignment) error
	// DeleteSlot removes the slot's assignment and reports how many rows went away.
	DeleteSlot(ctx context.Context, ownerID primitive.ObjectID, day domain.DayOfWeek) (int64, error)
	DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) (int64, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.ScheduledAssignment, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
