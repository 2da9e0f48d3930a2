package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"nodeacademy/internal/achievement"
	"nodeacademy/internal/database"
	"nodeacademy/internal/logger"
)

const backupVersion = "1"

var backupSQL = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// BackupData is the portable JSON form of every account with its progress
// and achievements. It restores into any supported database type.
type BackupData struct {
	Version    string       `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	Users      []UserBackup `json:"users"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	PasswordHash string              `json:"password_hash"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Progress     []ProgressBackup    `json:"progress"`
	Achievements []AchievementBackup `json:"achievements"`
}

// ProgressBackup is one lesson result
type ProgressBackup struct {
	LessonID    int        `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	Score       int        `json:"score"`
	CompletedAt *time.Time `json:"completed_at"`
}

// AchievementBackup is one earned achievement
type AchievementBackup struct {
	AchievementID string    `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}

// ImportStats counts what an import wrote
type ImportStats struct {
	UsersCreated int
	UsersMatched int
	ProgressRows int
	Achievements int
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db      *database.DB
	lessons LessonLookup
	now     func() time.Time
}

// NewBackupService creates a new backup service. Imported progress must refer
// to lessons known to lessons.
func NewBackupService(db *database.DB, lessons LessonLookup) *BackupService {
	return &BackupService{db: db, lessons: lessons, now: time.Now}
}

// Export writes every user with their progress and achievements to w
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: s.now().UTC(),
	}

	if err := s.exportUsers(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	index := make(map[int64]*UserBackup, len(backup.Users))
	for i := range backup.Users {
		index[backup.Users[i].ID] = &backup.Users[i]
	}
	if err := s.exportProgress(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to export progress: %w", err)
	}
	if err := s.exportAchievements(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to export achievements: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	logger.FromContext(ctx).Info("database exported", zap.Int("users", len(backup.Users)))
	return backup, nil
}

func (s *BackupService) exportUsers(ctx context.Context, backup *BackupData) error {
	query, args, err := backupSQL.
		Select("id", "name", "email", "password_hash", "created_at", "updated_at").
		From("users").OrderBy("id").ToSql()
	if err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportProgress(ctx context.Context, index map[int64]*UserBackup) error {
	query, args, err := backupSQL.
		Select("user_id", "lesson_id", "completed", "score", "completed_at").
		From("user_progress").OrderBy("user_id", "lesson_id").ToSql()
	if err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID      int64
			p           ProgressBackup
			completedAt sql.NullTime
		)
		if err := rows.Scan(&userID, &p.LessonID, &p.Completed, &p.Score, &completedAt); err != nil {
			return err
		}
		if completedAt.Valid {
			t := completedAt.Time.UTC()
			p.CompletedAt = &t
		}
		if u, ok := index[userID]; ok {
			u.Progress = append(u.Progress, p)
		}
	}
	return rows.Err()
}

func (s *BackupService) exportAchievements(ctx context.Context, index map[int64]*UserBackup) error {
	query, args, err := backupSQL.
		Select("user_id", "achievement_id", "earned_at").
		From("user_achievements").OrderBy("user_id", "earned_at", "achievement_id").ToSql()
	if err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			a      AchievementBackup
		)
		if err := rows.Scan(&userID, &a.AchievementID, &a.EarnedAt); err != nil {
			return err
		}
		a.EarnedAt = a.EarnedAt.UTC()
		if u, ok := index[userID]; ok {
			u.Achievements = append(u.Achievements, a)
		}
	}
	return rows.Err()
}

// Import restores a backup read from r in a single transaction. Users are
// matched by email, so importing the same backup twice changes nothing. With
// clear set, all existing accounts are deleted first.
func (s *BackupService) Import(ctx context.Context, r io.Reader, clear bool) (ImportStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return ImportStats{}, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return ImportStats{}, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log := logger.FromContext(ctx)
	log.Info("importing backup", zap.Time("exported_at", backup.ExportedAt), zap.Int("users", len(backup.Users)))

	var stats ImportStats
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if clear {
			for _, table := range []string{"user_achievements", "user_progress", "users"} {
				if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
					return fmt.Errorf("failed to clear table %s: %w", table, err)
				}
			}
			log.Warn("cleared existing data before import")
		}

		for _, u := range backup.Users {
			if err := s.importUser(ctx, tx, u, &stats); err != nil {
				return fmt.Errorf("failed to import user %s: %w", u.Email, err)
			}
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}

	log.Info("database import completed",
		zap.Int("users_created", stats.UsersCreated),
		zap.Int("users_matched", stats.UsersMatched),
		zap.Int("progress_rows", stats.ProgressRows),
		zap.Int("achievements", stats.Achievements))
	return stats, nil
}

func (s *BackupService) importUser(ctx context.Context, tx database.DBTX, u UserBackup, stats *ImportStats) error {
	for _, p := range u.Progress {
		if !s.lessons.Has(p.LessonID) {
			return fmt.Errorf("unknown lesson %d", p.LessonID)
		}
	}
	for _, a := range u.Achievements {
		if _, ok := achievement.Lookup(achievement.ID(a.AchievementID)); !ok {
			return fmt.Errorf("unknown achievement %q", a.AchievementID)
		}
	}

	query, args, err := backupSQL.Select("id").From("users").Where(squirrel.Eq{"email": u.Email}).ToSql()
	if err != nil {
		return err
	}

	var userID int64
	err = tx.QueryRowContext(ctx, query, args...).Scan(&userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		query, args, err = backupSQL.Insert("users").
			Columns("name", "email", "password_hash", "created_at", "updated_at").
			Values(u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt).ToSql()
		if err != nil {
			return err
		}
		if userID, err = tx.ExecReturningID(ctx, query, args...); err != nil {
			return err
		}
		stats.UsersCreated++
	case err != nil:
		return err
	default:
		stats.UsersMatched++
	}

	dialect := tx.GetDialect()
	for _, p := range u.Progress {
		if _, err := tx.ExecContext(ctx, dialect.UpsertProgressQuery(),
			userID, p.LessonID, p.Completed, p.Score, p.CompletedAt); err != nil {
			return fmt.Errorf("lesson %d: %w", p.LessonID, err)
		}
		stats.ProgressRows++
	}
	for _, a := range u.Achievements {
		res, err := tx.ExecContext(ctx, dialect.InsertAchievementQuery(), userID, a.AchievementID, a.EarnedAt)
		if err != nil {
			return fmt.Errorf("achievement %s: %w", a.AchievementID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.Achievements++
		}
	}
	return nil
}
