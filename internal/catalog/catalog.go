// Package catalog holds the immutable list of lessons.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"nodeacademy/internal/models"
)

//go:embed lessons.json
var embeddedLessons []byte

// Catalog is a read-only set of lessons keyed by id
type Catalog struct {
	lessons []models.Lesson
	byID    map[int]int
}

// Load reads lessons from path, or the built-in course when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embeddedLessons)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lessons file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON array of lessons
func Parse(data []byte) (*Catalog, error) {
	var lessons []models.Lesson
	if err := json.Unmarshal(data, &lessons); err != nil {
		return nil, fmt.Errorf("failed to decode lessons: %w", err)
	}
	if err := validate(lessons); err != nil {
		return nil, err
	}

	sort.Slice(lessons, func(i, j int) bool { return lessons[i].ID < lessons[j].ID })
	c := &Catalog{lessons: lessons, byID: make(map[int]int, len(lessons))}
	for i, l := range lessons {
		c.byID[l.ID] = i
	}
	return c, nil
}

func validate(lessons []models.Lesson) error {
	if len(lessons) == 0 {
		return errors.New("catalog has no lessons")
	}

	var errs []error
	seen := make(map[int]bool, len(lessons))
	for _, l := range lessons {
		if l.ID <= 0 {
			errs = append(errs, fmt.Errorf("lesson %q: id must be positive", l.Title))
		}
		if seen[l.ID] {
			errs = append(errs, fmt.Errorf("lesson %d: duplicate id", l.ID))
		}
		seen[l.ID] = true
		if l.Title == "" {
			errs = append(errs, fmt.Errorf("lesson %d: title is empty", l.ID))
		}
		if l.Test == nil {
			continue
		}
		for i, q := range l.Test.Questions {
			if len(q.Options) < 2 {
				errs = append(errs, fmt.Errorf("lesson %d question %d: needs at least 2 options", l.ID, i+1))
				continue
			}
			if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
				errs = append(errs, fmt.Errorf("lesson %d question %d: correctAnswer %d out of range", l.ID, i+1, q.CorrectAnswer))
			}
		}
	}
	return errors.Join(errs...)
}

// Get returns the lesson with id
func (c *Catalog) Get(id int) (models.Lesson, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Lesson{}, false
	}
	return c.lessons[i], true
}

// Has reports whether id names a lesson
func (c *Catalog) Has(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// List returns summaries of every lesson ordered by id
func (c *Catalog) List() []models.LessonSummary {
	out := make([]models.LessonSummary, len(c.lessons))
	for i := range c.lessons {
		out[i] = c.lessons[i].Summary()
	}
	return out
}

// Count returns the number of lessons
func (c *Catalog) Count() int {
	return len(c.lessons)
}
