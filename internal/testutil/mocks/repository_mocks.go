package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"nodeacademy/internal/models"
)

// MockUsers is a mock implementation of repository.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Create(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, name, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsers) EmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error) {
	args := m.Called(ctx, email, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) UpdateProfile(ctx context.Context, id int64, name, email string) (*models.User, error) {
	args := m.Called(ctx, id, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsers) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockProgress is a mock implementation of repository.Progress
type MockProgress struct {
	mock.Mock
}

func (m *MockProgress) Upsert(ctx context.Context, record models.ProgressRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockProgress) ListByUser(ctx context.Context, userID int64) ([]models.ProgressRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProgressRecord), args.Error(1)
}

func (m *MockProgress) Stats(ctx context.Context, userID int64) (models.ProgressStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.ProgressStats), args.Error(1)
}

// MockAchievements is a mock implementation of repository.Achievements
type MockAchievements struct {
	mock.Mock
}

func (m *MockAchievements) InsertIfAbsent(ctx context.Context, userID int64, achievementID string, earnedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, achievementID, earnedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockAchievements) ListByUser(ctx context.Context, userID int64) ([]models.AchievementRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AchievementRecord), args.Error(1)
}
