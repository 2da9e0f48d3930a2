package achievement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeacademy/internal/achievement"
	"nodeacademy/internal/models"
	"nodeacademy/internal/repository"
	"nodeacademy/internal/testutil"
)

func TestEvaluateAgainstStore(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	userID := testutil.CreateUser(t, db, "Learner", "learner@example.com")

	progress := repository.NewProgressRepository(db)
	badges := repository.NewAchievementRepository(db)
	evaluator := achievement.NewEvaluator(progress, badges)

	day := time.Now().UTC()
	for lesson := 1; lesson <= 3; lesson++ {
		require.NoError(t, progress.Upsert(ctx, models.ProgressRecord{
			UserID: userID, LessonID: lesson, Completed: true, Score: 45, CompletedAt: &day,
		}))
	}

	earned, err := evaluator.Evaluate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []achievement.ID{achievement.FirstLesson, achievement.QuickLearner}, earned)

	again, err := evaluator.Evaluate(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, again)

	records, err := badges.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
