package models

// Question is a single multiple-choice item. CorrectAnswer indexes Options.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Test is the quiz attached to a lesson
type Test struct {
	Questions []Question `json:"questions"`
}

// Lesson is an immutable catalog entry
type Lesson struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Difficulty  string `json:"difficulty"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Example     string `json:"example,omitempty"`
	Test        *Test  `json:"test,omitempty"`
}

// LessonSummary is the list form of a lesson, without content or test
type LessonSummary struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Difficulty  string `json:"difficulty"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	HasTest     bool   `json:"hasTest"`
}

// Summary returns the list form of the lesson
func (l *Lesson) Summary() LessonSummary {
	return LessonSummary{
		ID:          l.ID,
		Title:       l.Title,
		Difficulty:  l.Difficulty,
		Duration:    l.Duration,
		Description: l.Description,
		HasTest:     l.Test != nil && len(l.Test.Questions) > 0,
	}
}
