package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nodeacademy/internal/achievement"
	apperrors "nodeacademy/internal/errors"
	"nodeacademy/internal/logger"
	"nodeacademy/internal/models"
	"nodeacademy/internal/quiz"
	"nodeacademy/internal/repository"
)

// LessonLookup reports whether a lesson exists
type LessonLookup interface {
	Has(id int) bool
}

// AchievementEvaluator awards achievements and returns the newly earned ones
type AchievementEvaluator interface {
	Evaluate(ctx context.Context, userID int64) ([]achievement.ID, error)
}

// AchievementSender emails newly earned achievements
type AchievementSender interface {
	SendAchievementEmail(ctx context.Context, toEmail, toName string, earned []achievement.Definition) error
}

// ProgressService records lesson completions and builds the progress view
type ProgressService struct {
	progress     repository.Progress
	achievements repository.Achievements
	users        repository.Users
	lessons      LessonLookup
	evaluator    AchievementEvaluator
	notifier     AchievementSender
	now          func() time.Time
}

// NewProgressService creates a new progress service. notifier may be nil.
func NewProgressService(
	progress repository.Progress,
	achievements repository.Achievements,
	users repository.Users,
	lessons LessonLookup,
	evaluator AchievementEvaluator,
	notifier AchievementSender,
) *ProgressService {
	return &ProgressService{
		progress:     progress,
		achievements: achievements,
		users:        users,
		lessons:      lessons,
		evaluator:    evaluator,
		notifier:     notifier,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CompleteLesson stores the score for (userID, lessonID), overwriting any
// earlier result, then evaluates achievements. Evaluation is best-effort: a
// failure there is logged and the completion still succeeds.
func (s *ProgressService) CompleteLesson(ctx context.Context, userID int64, lessonID, score int) ([]achievement.ID, error) {
	if !s.lessons.Has(lessonID) {
		return nil, apperrors.NewNotFoundError("lesson", lessonID)
	}
	if score < 0 || score > quiz.MaxScore {
		return nil, apperrors.NewValidationError("score", fmt.Sprintf("must be between 0 and %d", quiz.MaxScore))
	}

	completedAt := s.now()
	err := s.progress.Upsert(ctx, models.ProgressRecord{
		UserID:      userID,
		LessonID:    lessonID,
		Completed:   true,
		Score:       score,
		CompletedAt: &completedAt,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	log := logger.FromContext(ctx).With(zap.Int64("user_id", userID), zap.Int("lesson_id", lessonID))
	log.Info("lesson completed", zap.Int("score", score))

	earned, err := s.evaluator.Evaluate(ctx, userID)
	if err != nil {
		log.Error("achievement evaluation failed", zap.Error(err))
	}
	if len(earned) > 0 {
		s.notify(ctx, userID, earned)
	}
	return earned, nil
}

func (s *ProgressService) notify(ctx context.Context, userID int64, earned []achievement.ID) {
	if s.notifier == nil {
		return
	}
	log := logger.FromContext(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		log.Warn("skipping achievement email: user lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	defs := make([]achievement.Definition, 0, len(earned))
	for _, id := range earned {
		if d, ok := achievement.Lookup(id); ok {
			defs = append(defs, d)
		}
	}
	if err := s.notifier.SendAchievementEmail(ctx, user.Email, user.Name, defs); err != nil {
		log.Warn("failed to send achievement email", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// GetProgress reads the user's progress and achievements from the store.
// Nothing is cached, so a completion is visible to the next call.
func (s *ProgressService) GetProgress(ctx context.Context, userID int64) (models.ProgressView, error) {
	records, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return models.ProgressView{}, apperrors.NewInternalError(err)
	}
	earned, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return models.ProgressView{}, apperrors.NewInternalError(err)
	}
	return models.NewProgressView(records, earned, string(achievement.QuickLearner)), nil
}
