package sqlite

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/metrics"
	"alcyxob/weekly-routines/internal/repository"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type routineRepository struct {
	db *DB
}

// NewRoutineRepository creates a SQLite-backed repository.RoutineRepository.
func NewRoutineRepository(db *DB) repository.RoutineRepository {
	return &routineRepository{db: db}
}

func (r *routineRepository) Create(ctx context.Context, routine *domain.Routine) (_ primitive.ObjectID, err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpCreateRoutine)
	defer func() { done(err) }()

	if routine.OwnerID == primitive.NilObjectID || routine.Name == "" {
		return primitive.NilObjectID, errors.New("routine requires ownerId and name")
	}
	if routine.Exercises == nil {
		routine.Exercises = []domain.Exercise{}
	}
	exercisesJSON, err := json.Marshal(routine.Exercises)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to encode exercises: %w", err)
	}
	routine.ID = primitive.NewObjectID()

	_, err = r.db.conn.ExecContext(ctx, `
		INSERT INTO routines (id, owner_id, name, exercises_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, routine.ID.Hex(), routine.OwnerID.Hex(), routine.Name, string(exercisesJSON),
		toMillis(routine.CreatedAt), toMillis(routine.UpdatedAt))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create routine: %w", err)
	}
	return routine.ID, nil
}

func (r *routineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (_ *domain.Routine, err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpGetRoutine)
	defer func() { done(ignoreNotFound(err)) }()

	row := r.db.conn.QueryRowContext(ctx, `
		SELECT id, owner_id, name, exercises_json, created_at, updated_at
		FROM routines WHERE id = ?
	`, id.Hex())
	routine, err := scanRoutine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}
	return routine, nil
}

func (r *routineRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) (_ []domain.Routine, err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpListRoutines)
	defer func() { done(err) }()

	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT id, owner_id, name, exercises_json, created_at, updated_at
		FROM routines WHERE owner_id = ?
		ORDER BY created_at, rowid
	`, ownerID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}
	defer rows.Close()

	routines := []domain.Routine{}
	for rows.Next() {
		routine, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan routine: %w", err)
		}
		routines = append(routines, *routine)
	}
	return routines, rows.Err()
}

func (r *routineRepository) Update(ctx context.Context, routine *domain.Routine) (err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpUpdateRoutine)
	defer func() { done(ignoreNotFound(err)) }()

	exercises := routine.Exercises
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	exercisesJSON, err := json.Marshal(exercises)
	if err != nil {
		return fmt.Errorf("failed to encode exercises: %w", err)
	}

	result, err := r.db.conn.ExecContext(ctx, `
		UPDATE routines SET name = ?, exercises_json = ?, updated_at = ?
		WHERE id = ?
	`, routine.Name, string(exercisesJSON), toMillis(routine.UpdatedAt), routine.ID.Hex())
	if err != nil {
		return fmt.Errorf("failed to update routine: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *routineRepository) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpDeleteRoutine)
	defer func() { done(ignoreNotFound(err)) }()

	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM routines WHERE id = ?`, id.Hex())
	if err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoutine(row rowScanner) (*domain.Routine, error) {
	var (
		routine              domain.Routine
		id, ownerID, exJSON  string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &ownerID, &routine.Name, &exJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if routine.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if routine.OwnerID, err = parseID(ownerID); err != nil {
		return nil, err
	}
	routine.Exercises = []domain.Exercise{}
	if err := json.Unmarshal([]byte(exJSON), &routine.Exercises); err != nil {
		return nil, fmt.Errorf("corrupt exercises for routine %s: %w", id, err)
	}
	routine.CreatedAt = fromMillis(createdAt)
	routine.UpdatedAt = fromMillis(updatedAt)
	return &routine, nil
}
