package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nodeacademy/internal/achievement"
)

// MockEvaluator is a mock achievement evaluator
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, userID int64) ([]achievement.ID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]achievement.ID), args.Error(1)
}

// MockMailer is a mock of the welcome and achievement email senders
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	args := m.Called(ctx, toEmail, toName)
	return args.Error(0)
}

func (m *MockMailer) SendAchievementEmail(ctx context.Context, toEmail, toName string, earned []achievement.Definition) error {
	args := m.Called(ctx, toEmail, toName, earned)
	return args.Error(0)
}
