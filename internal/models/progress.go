package models

import "time"

// ProgressRecord is the stored result of one lesson for one user. There is at
// most one record per (UserID, LessonID); a repeat completion overwrites it.
type ProgressRecord struct {
	UserID      int64
	LessonID    int
	Completed   bool
	Score       int
	CompletedAt *time.Time
}

// AchievementRecord marks a badge a user has earned. Records are never updated.
type AchievementRecord struct {
	UserID        int64
	AchievementID string
	EarnedAt      time.Time
}

// LessonProgress is the per-lesson entry of a ProgressView
type LessonProgress struct {
	Completed   bool       `json:"completed"`
	Score       int        `json:"score"`
	CompletedAt *time.Time `json:"completedAt"`
}

// ProgressView is the aggregate a user sees on their profile
type ProgressView struct {
	Lessons          map[int]LessonProgress `json:"lessons"`
	CompletedLessons int                    `json:"completedLessons"`
	TotalScore       int                    `json:"totalScore"`
	Achievements     map[string]time.Time   `json:"achievements"`
	QuickLearner     bool                   `json:"quickLearner"`
}

// NewProgressView folds stored records into the aggregate view. Only completed
// records count toward CompletedLessons and TotalScore.
func NewProgressView(records []ProgressRecord, achievements []AchievementRecord, quickLearnerID string) ProgressView {
	view := ProgressView{
		Lessons:      make(map[int]LessonProgress, len(records)),
		Achievements: make(map[string]time.Time, len(achievements)),
	}
	for _, r := range records {
		view.Lessons[r.LessonID] = LessonProgress{
			Completed:   r.Completed,
			Score:       r.Score,
			CompletedAt: r.CompletedAt,
		}
		if r.Completed {
			view.CompletedLessons++
			view.TotalScore += r.Score
		}
	}
	for _, a := range achievements {
		view.Achievements[a.AchievementID] = a.EarnedAt
	}
	_, view.QuickLearner = view.Achievements[quickLearnerID]
	return view
}

// ProgressStats aggregates a user's completed lessons for achievement rules
type ProgressStats struct {
	CompletedCount int
	TotalScore     int
	// MaxCompletedInOneDay is the largest number of completions sharing a
	// UTC calendar day.
	MaxCompletedInOneDay int
}
