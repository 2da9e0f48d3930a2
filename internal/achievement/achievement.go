// Package achievement derives badges from a user's lesson progress.
package achievement

import "nodeacademy/internal/models"

// ID identifies an achievement
type ID string

const (
	FirstLesson    ID = "first_lesson"
	HalfCourse     ID = "half_course"
	CourseComplete ID = "course_complete"
	HighScore      ID = "high_score"
	PerfectScore   ID = "perfect_score"
	QuickLearner   ID = "quick_learner"
)

// Definition describes an achievement and the condition that awards it
type Definition struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	earned func(models.ProgressStats) bool
}

var definitions = []Definition{
	{
		ID:          FirstLesson,
		Title:       "First Steps",
		Description: "Complete your first lesson",
		Icon:        "🎯",
		earned:      func(s models.ProgressStats) bool { return s.CompletedCount >= 1 },
	},
	{
		ID:          HalfCourse,
		Title:       "Halfway There",
		Description: "Complete 5 lessons",
		Icon:        "🏃",
		earned:      func(s models.ProgressStats) bool { return s.CompletedCount >= 5 },
	},
	{
		ID:          CourseComplete,
		Title:       "Node.js Master",
		Description: "Complete every lesson",
		Icon:        "🏆",
		earned:      func(s models.ProgressStats) bool { return s.CompletedCount >= 10 },
	},
	{
		ID:          HighScore,
		Title:       "Top Student",
		Description: "Score 400 points or more",
		Icon:        "⭐",
		earned:      func(s models.ProgressStats) bool { return s.TotalScore >= 400 },
	},
	{
		ID:          PerfectScore,
		Title:       "Perfect Score",
		Description: "Reach the maximum score",
		Icon:        "💎",
		earned:      func(s models.ProgressStats) bool { return s.TotalScore >= 500 },
	},
	{
		ID:          QuickLearner,
		Title:       "Quick Learner",
		Description: "Complete 3 lessons in one day",
		Icon:        "⚡",
		earned:      func(s models.ProgressStats) bool { return s.MaxCompletedInOneDay >= 3 },
	},
}

// Catalog returns every achievement definition in display order
func Catalog() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition for id
func Lookup(id ID) (Definition, bool) {
	for _, d := range definitions {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Rules returns the achievements whose conditions hold for stats, in catalog order
func Rules(stats models.ProgressStats) []ID {
	var ids []ID
	for _, d := range definitions {
		if d.earned(stats) {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
