package sqlite

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/metrics"
	"alcyxob/weekly-routines/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type scheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a SQLite-backed repository.ScheduleRepository.
func NewScheduleRepository(db *DB) repository.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// Replace deletes the slot's previous row and inserts the new one in a single
// transaction; other connections see either the old binding or the new one.
func (r *scheduleRepository) Replace(ctx context.Context, assignment *domain.ScheduledAssignment) (err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpReplaceAssignment)
	defer func() { done(err) }()

	if assignment.OwnerID == primitive.NilObjectID || assignment.RoutineID == primitive.NilObjectID {
		return errors.New("assignment requires ownerId and routineId")
	}

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM scheduled_assignments WHERE owner_id = ? AND day_of_week = ?
	`, assignment.OwnerID.Hex(), int(assignment.DayOfWeek)); err != nil {
		return fmt.Errorf("failed to clear slot: %w", err)
	}

	id := primitive.NewObjectID()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO scheduled_assignments (id, owner_id, routine_id, day_of_week, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id.Hex(), assignment.OwnerID.Hex(), assignment.RoutineID.Hex(),
		int(assignment.DayOfWeek), toMillis(assignment.CreatedAt)); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment: %w", err)
	}
	assignment.ID = id
	return nil
}

func (r *scheduleRepository) DeleteSlot(ctx context.Context, ownerID primitive.ObjectID, day domain.DayOfWeek) (_ int64, err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpDeleteSlot)
	defer func() { done(err) }()

	result, err := r.db.conn.ExecContext(ctx, `
		DELETE FROM scheduled_assignments WHERE owner_id = ? AND day_of_week = ?
	`, ownerID.Hex(), int(day))
	if err != nil {
		return 0, fmt.Errorf("failed to delete slot: %w", err)
	}
	return result.RowsAffected()
}

func (r *scheduleRepository) DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) (_ int64, err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpDeleteByRoutine)
	defer func() { done(err) }()

	result, err := r.db.conn.ExecContext(ctx, `
		DELETE FROM scheduled_assignments WHERE routine_id = ?
	`, routineID.Hex())
	if err != nil {
		return 0, fmt.Errorf("failed to delete assignments for routine: %w", err)
	}
	return result.RowsAffected()
}

func (r *scheduleRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) (_ []domain.ScheduledAssignment, err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpListAssignments)
	defer func() { done(err) }()

	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT id, owner_id, routine_id, day_of_week, created_at
		FROM scheduled_assignments WHERE owner_id = ?
		ORDER BY day_of_week, created_at
	`, ownerID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	assignments := []domain.ScheduledAssignment{}
	for rows.Next() {
		var (
			a                  domain.ScheduledAssignment
			id, owner, routine string
			day                int
			createdAt          int64
		)
		if err := rows.Scan(&id, &owner, &routine, &day, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if a.ID, err = parseID(id); err != nil {
			return nil, err
		}
		if a.OwnerID, err = parseID(owner); err != nil {
			return nil, err
		}
		if a.RoutineID, err = parseID(routine); err != nil {
			return nil, err
		}
		a.DayOfWeek = domain.DayOfWeek(day)
		a.CreatedAt = fromMillis(createdAt)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
