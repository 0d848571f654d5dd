package sqlite

import (
	"alcyxob/weekly-routines/internal/domain"
	"alcyxob/weekly-routines/internal/metrics"
	"alcyxob/weekly-routines/internal/repository"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	db *DB
}

// NewUserRepository creates a SQLite-backed repository.UserRepository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (_ primitive.ObjectID, err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpCreateUser)
	defer func() { done(err) }()

	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user email and password hash are required")
	}
	user.ID = primitive.NewObjectID()

	_, err = r.db.conn.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID.Hex(), user.DisplayName, user.Email, user.PasswordHash,
		toMillis(user.CreatedAt), toMillis(user.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, fmt.Errorf("failed to create user: %w", err)
	}
	return user.ID, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.getOne(ctx, "id = ?", id.Hex())
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (_ *domain.User, err error) {
	done := metrics.ObserveStore(metrics.BackendSQLite, metrics.OpGetUser)
	defer func() { done(ignoreNotFound(err)) }()

	var (
		u                    domain.User
		id                   string
		createdAt, updatedAt int64
	)
	err = r.db.conn.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, created_at, updated_at
		FROM users WHERE `+where, arg).Scan(
		&id, &u.DisplayName, &u.Email, &u.PasswordHash, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u.ID, err = parseID(id); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}
