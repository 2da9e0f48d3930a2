package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"nodeacademy/internal/database"
	"nodeacademy/internal/logger"
	"nodeacademy/internal/models"
)

// ProgressRepository handles database operations for lesson progress
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert writes the record for (UserID, LessonID) in a single statement.
// Concurrent upserts of the same key leave exactly one row; the last write wins.
func (r *ProgressRepository) Upsert(ctx context.Context, record models.ProgressRecord) error {
	var completedAt interface{}
	if record.CompletedAt != nil {
		completedAt = record.CompletedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, r.db.Dialect.UpsertProgressQuery(),
		record.UserID, record.LessonID, record.Completed, record.Score, completedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	logger.FromContext(ctx).Debug("progress saved",
		zap.Int64("user_id", record.UserID),
		zap.Int("lesson_id", record.LessonID),
		zap.Int("score", record.Score),
	)
	return nil
}

// ListByUser returns every progress record for a user ordered by lesson
func (r *ProgressRepository) ListByUser(ctx context.Context, userID int64) ([]models.ProgressRecord, error) {
	query, args, err := sqlBuilder.
		Select("user_id", "lesson_id", "completed", "score", "completed_at").
		From("user_progress").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("lesson_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build progress query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var records []models.ProgressRecord
	for rows.Next() {
		var rec models.ProgressRecord
		var completedAt sql.NullTime
		if err := rows.Scan(&rec.UserID, &rec.LessonID, &rec.Completed, &rec.Score, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time.UTC()
			rec.CompletedAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress: %w", err)
	}
	return records, nil
}

// Stats aggregates a user's completed lessons. The count and sum come from
// SQL; the per-day maximum is folded from completion timestamps so it does
// not depend on dialect date functions.
func (r *ProgressRepository) Stats(ctx context.Context, userID int64) (models.ProgressStats, error) {
	var stats models.ProgressStats

	query, args, err := sqlBuilder.
		Select("COUNT(*)", "COALESCE(SUM(score), 0)").
		From("user_progress").
		Where(squirrel.Eq{"user_id": userID, "completed": true}).
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("failed to build stats query: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&stats.CompletedCount, &stats.TotalScore); err != nil {
		return stats, fmt.Errorf("failed to aggregate progress: %w", err)
	}
	if stats.CompletedCount == 0 {
		return stats, nil
	}

	query, args, err = sqlBuilder.
		Select("completed_at").
		From("user_progress").
		Where(squirrel.Eq{"user_id": userID, "completed": true}).
		Where(squirrel.NotEq{"completed_at": nil}).
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("failed to build stats query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("failed to query completion times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return stats, fmt.Errorf("failed to scan completion time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("failed to iterate completion times: %w", err)
	}

	stats.MaxCompletedInOneDay = maxPerUTCDay(times)
	return stats, nil
}

func maxPerUTCDay(times []time.Time) int {
	perDay := make(map[string]int, len(times))
	best := 0
	for _, t := range times {
		day := t.UTC().Format("2006-01-02")
		perDay[day]++
		if perDay[day] > best {
			best = perDay[day]
		}
	}
	return best
}
