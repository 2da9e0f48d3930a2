package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) (string, error)

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// UpsertProgressQuery returns an atomic insert-or-update of a user_progress
	// row keyed on (user_id, lesson_id). Arguments: user_id, lesson_id,
	// completed, score, completed_at.
	UpsertProgressQuery() string

	// InsertAchievementQuery returns an insert into user_achievements that is a
	// no-op when (user_id, achievement_id) already exists. Arguments: user_id,
	// achievement_id, earned_at.
	InsertAchievementQuery() string

	// IsUniqueViolation reports whether err is a unique constraint failure
	IsUniqueViolation(err error) bool
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// onConflictUpsertProgress is shared by the dialects that speak ON CONFLICT.
const onConflictUpsertProgress = `
		INSERT INTO user_progress (user_id, lesson_id, completed, score, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, lesson_id)
		DO UPDATE SET completed = excluded.completed, score = excluded.score, completed_at = excluded.completed_at
	`

const onConflictInsertAchievement = `
		INSERT INTO user_achievements (user_id, achievement_id, earned_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`
