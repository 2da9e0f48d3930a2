package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"nodeacademy/internal/database"
	"nodeacademy/internal/models"
)

// AchievementRepository handles database operations for earned achievements
type AchievementRepository struct {
	db *database.DB
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *database.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// InsertIfAbsent records an achievement unless the user already has it.
// It reports whether a new row was written.
func (r *AchievementRepository) InsertIfAbsent(ctx context.Context, userID int64, achievementID string, earnedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Dialect.InsertAchievementQuery(), userID, achievementID, earnedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert achievement %s: %w", achievementID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// ListByUser returns a user's achievements in the order they were earned
func (r *AchievementRepository) ListByUser(ctx context.Context, userID int64) ([]models.AchievementRecord, error) {
	query, args, err := sqlBuilder.
		Select("user_id", "achievement_id", "earned_at").
		From("user_achievements").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("earned_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build achievements query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var records []models.AchievementRecord
	for rows.Next() {
		var rec models.AchievementRecord
		if err := rows.Scan(&rec.UserID, &rec.AchievementID, &rec.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		rec.EarnedAt = rec.EarnedAt.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievements: %w", err)
	}
	return records, nil
}
