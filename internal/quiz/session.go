// Package quiz runs a single learner's pass through a lesson test.
//
// Questions are shown in a shuffled order and each question's options are
// shuffled independently. The session keeps, for every displayed question, the
// mapping from displayed option position back to the original option index and
// the original correct index captured before shuffling. Answers are stored in
// original-index space so scoring never depends on the display order.
package quiz

import (
	"errors"
	"math/rand"
	"time"

	"nodeacademy/internal/models"
)

// Unanswered marks a question with no selection
const Unanswered = -1

var (
	ErrNoTest           = errors.New("lesson has no test")
	ErrNoQuestions      = errors.New("test has no questions")
	ErrOptionOutOfRange = errors.New("option index out of range")
)

type question struct {
	text    string
	options []string // original order
	// order[display] is the original option index shown at that position
	order           []int
	originalCorrect int
}

// Session is one attempt at a lesson's test. It is not safe for concurrent use.
type Session struct {
	lesson    models.Lesson
	questions []question
	answers   []int
	current   int
	rng       *rand.Rand
}

// Option configures a Session
type Option func(*Session)

// WithRand sets the random source used for shuffling
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.rng = r
	}
}

// Start builds a freshly shuffled session for lesson
func Start(lesson models.Lesson, opts ...Option) (*Session, error) {
	if lesson.Test == nil {
		return nil, ErrNoTest
	}
	if len(lesson.Test.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	s := &Session{lesson: lesson}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.reset()
	return s, nil
}

// reset deep-copies the lesson's questions, capturing each correct index
// before shuffling, and clears all answers.
func (s *Session) reset() {
	src := s.lesson.Test.Questions
	qs := make([]question, len(src))
	for i, q := range src {
		options := make([]string, len(q.Options))
		copy(options, q.Options)

		order := make([]int, len(options))
		for j := range order {
			order[j] = j
		}
		s.rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })

		qs[i] = question{
			text:            q.Question,
			options:         options,
			order:           order,
			originalCorrect: q.CorrectAnswer,
		}
	}
	s.rng.Shuffle(len(qs), func(a, b int) { qs[a], qs[b] = qs[b], qs[a] })

	s.questions = qs
	s.answers = make([]int, len(qs))
	for i := range s.answers {
		s.answers[i] = Unanswered
	}
	s.current = 0
}

// Retry discards all answers and returns an independently reshuffled session
// for the same lesson.
func (s *Session) Retry() (*Session, error) {
	return Start(s.lesson, WithRand(s.rng))
}

// LessonID returns the id of the lesson under test
func (s *Session) LessonID() int {
	return s.lesson.ID
}

// Question is a question as displayed to the learner
type Question struct {
	Index   int // zero-based position in the session
	Total   int
	Text    string
	Options []string
	// Selected is the displayed position of the committed answer, or Unanswered
	Selected int
}

// CurrentQuestion returns the question at the current position
func (s *Session) CurrentQuestion() (Question, error) {
	if len(s.questions) == 0 {
		return Question{}, ErrNoQuestions
	}
	q := s.questions[s.current]

	options := make([]string, len(q.order))
	selected := Unanswered
	for display, original := range q.order {
		options[display] = q.options[original]
		if s.answers[s.current] == original {
			selected = display
		}
	}

	return Question{
		Index:    s.current,
		Total:    len(s.questions),
		Text:     q.text,
		Options:  options,
		Selected: selected,
	}, nil
}

// SelectAnswer records the option at displayIndex for the current question,
// replacing any earlier selection.
func (s *Session) SelectAnswer(displayIndex int) error {
	if len(s.questions) == 0 {
		return ErrNoQuestions
	}
	q := s.questions[s.current]
	if displayIndex < 0 || displayIndex >= len(q.order) {
		return ErrOptionOutOfRange
	}
	s.answers[s.current] = q.order[displayIndex]
	return nil
}

// commit records pending unless it is Unanswered
func (s *Session) commit(pending int) error {
	if pending == Unanswered {
		return nil
	}
	return s.SelectAnswer(pending)
}

// Advance commits the pending selection and moves to the next question.
// The position does not move past the last question.
func (s *Session) Advance(pending int) error {
	if len(s.questions) == 0 {
		return ErrNoQuestions
	}
	if err := s.commit(pending); err != nil {
		return err
	}
	if s.current < len(s.questions)-1 {
		s.current++
	}
	return nil
}

// Retreat commits the pending selection and moves to the previous question.
// The position does not move before the first question.
func (s *Session) Retreat(pending int) error {
	if len(s.questions) == 0 {
		return ErrNoQuestions
	}
	if err := s.commit(pending); err != nil {
		return err
	}
	if s.current > 0 {
		s.current--
	}
	return nil
}

// Progress reports the learner's position
type Progress struct {
	Current  int // one-based
	Total    int
	Answered int
}

// Progress returns the current position and answered count
func (s *Session) Progress() Progress {
	answered := 0
	for _, a := range s.answers {
		if a != Unanswered {
			answered++
		}
	}
	return Progress{Current: s.current + 1, Total: len(s.questions), Answered: answered}
}
