package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nodeacademy/internal/logger"
	"nodeacademy/internal/models"
)

// StatsSource aggregates a user's completed lessons
type StatsSource interface {
	Stats(ctx context.Context, userID int64) (models.ProgressStats, error)
}

// Recorder stores an achievement unless it is already present
type Recorder interface {
	InsertIfAbsent(ctx context.Context, userID int64, achievementID string, earnedAt time.Time) (bool, error)
}

// Evaluator awards achievements from stored progress. It only ever adds
// records, so running it again is harmless.
type Evaluator struct {
	stats    StatsSource
	recorder Recorder
	now      func() time.Time
}

// NewEvaluator creates an evaluator over the given stores
func NewEvaluator(stats StatsSource, recorder Recorder) *Evaluator {
	return &Evaluator{
		stats:    stats,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate records every achievement the user currently qualifies for and
// returns the ones that were newly earned by this call. An insert failure does
// not stop the remaining inserts; all failures are returned joined.
func (e *Evaluator) Evaluate(ctx context.Context, userID int64) ([]ID, error) {
	stats, err := e.stats.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress stats: %w", err)
	}

	now := e.now()
	var earned []ID
	var errs []error
	for _, id := range Rules(stats) {
		inserted, err := e.recorder.InsertIfAbsent(ctx, userID, string(id), now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if inserted {
			earned = append(earned, id)
		}
	}

	if len(earned) > 0 {
		logger.FromContext(ctx).Info("achievements earned",
			zap.Int64("user_id", userID),
			zap.Any("achievements", earned),
		)
	}
	return earned, errors.Join(errs...)
}
