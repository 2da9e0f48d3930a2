package repository

import (
	"context"
	"errors"
	"time"

	"nodeacademy/internal/models"
)

// ErrDuplicateEmail is returned when an insert or update collides with an
// existing user's email.
var ErrDuplicateEmail = errors.New("email already registered")

// Users handles user account data access
type Users interface {
	Create(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// Progress handles per-lesson progress data access
type Progress interface {
	Upsert(ctx context.Context, record models.ProgressRecord) error
	ListByUser(ctx context.Context, userID int64) ([]models.ProgressRecord, error)
	Stats(ctx context.Context, userID int64) (models.ProgressStats, error)
}

// Achievements handles earned badge data access
type Achievements interface {
	InsertIfAbsent(ctx context.Context, userID int64, achievementID string, earnedAt time.Time) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]models.AchievementRecord, error)
}
