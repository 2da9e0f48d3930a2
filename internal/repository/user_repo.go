package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"nodeacademy/internal/database"
	"nodeacademy/internal/logger"
	"nodeacademy/internal/models"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

// UserRepository handles database operations for users
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A collision on email returns ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, name, email, passwordHash, now, now)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.FromContext(ctx).Debug("user created", zap.Int64("user_id", id))

	return &models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetByID retrieves a user by ID. A missing user returns nil, nil.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email address. A missing user returns nil, nil.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	query, args, err := sqlBuilder.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	user := &models.User{}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// EmailTakenByOther reports whether email belongs to a user other than userID
func (r *UserRepository) EmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("users").
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.NotEq{"id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build email query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// UpdateProfile changes a user's name and email and returns the updated user.
// A missing user returns nil, nil.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) (*models.User, error) {
	query, args, err := sqlBuilder.Update("users").
		Set("name", name).
		Set("email", email).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query, args, err := sqlBuilder.Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Delete removes a user. Progress and achievement rows go with it through
// ON DELETE CASCADE. Reports whether a row was removed.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := sqlBuilder.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return n > 0, nil
}
