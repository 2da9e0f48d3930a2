package quiz

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeacademy/internal/models"
)

func testLesson(n int) models.Lesson {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			Question:      string(rune('A'+i)) + "?",
			Options:       []string{string(rune('A'+i)) + "0", string(rune('A'+i)) + "1", string(rune('A'+i)) + "2", string(rune('A'+i)) + "3"},
			CorrectAnswer: i % 4,
		}
	}
	return models.Lesson{ID: 3, Title: "Events", Test: &models.Test{Questions: qs}}
}

func correctText(lesson models.Lesson, question string) string {
	for _, q := range lesson.Test.Questions {
		if q.Question == question {
			return q.Options[q.CorrectAnswer]
		}
	}
	return ""
}

func indexOf(options []string, text string) int {
	for i, o := range options {
		if o == text {
			return i
		}
	}
	return Unanswered
}

func seeded(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func TestStart_Errors(t *testing.T) {
	_, err := Start(models.Lesson{ID: 1})
	assert.ErrorIs(t, err, ErrNoTest)

	_, err = Start(models.Lesson{ID: 1, Test: &models.Test{}})
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestStart_DoesNotMutateLesson(t *testing.T) {
	lesson := testLesson(5)
	before := lesson.Test.Questions[0].Options[0]

	s, err := Start(lesson, seeded(1))
	require.NoError(t, err)
	require.NoError(t, s.SelectAnswer(0))

	assert.Equal(t, before, lesson.Test.Questions[0].Options[0])
	assert.Equal(t, 0, lesson.Test.Questions[0].CorrectAnswer)
}

func TestShuffleIsPermutation(t *testing.T) {
	lesson := testLesson(6)
	s, err := Start(lesson, seeded(42))
	require.NoError(t, err)

	var questions []string
	for i := 0; i < 6; i++ {
		q, err := s.CurrentQuestion()
		require.NoError(t, err)
		questions = append(questions, q.Text)

		got := append([]string(nil), q.Options...)
		sort.Strings(got)
		var want []string
		for _, orig := range lesson.Test.Questions {
			if orig.Question == q.Text {
				want = append(want, orig.Options...)
			}
		}
		sort.Strings(want)
		assert.Equal(t, want, got)

		require.NoError(t, s.Advance(Unanswered))
	}

	var want []string
	for _, q := range lesson.Test.Questions {
		want = append(want, q.Question)
	}
	sort.Strings(questions)
	sort.Strings(want)
	assert.Equal(t, want, questions)
}

func TestSubmit_FourCorrectOneUnanswered(t *testing.T) {
	lesson := testLesson(5)
	s, err := Start(lesson, seeded(7))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		q, err := s.CurrentQuestion()
		require.NoError(t, err)
		require.NoError(t, s.Advance(indexOf(q.Options, correctText(lesson, q.Text))))
	}

	res, err := s.Submit(Unanswered)
	require.NoError(t, err)

	assert.Equal(t, 4, res.CorrectCount)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 80, res.Percentage)
	assert.Equal(t, 40, res.Score)
	assert.True(t, res.CertificateEligible())

	unanswered := 0
	for _, item := range res.Items {
		if item.ChosenIndex == Unanswered {
			unanswered++
			assert.Equal(t, "unanswered", item.Chosen)
			assert.False(t, item.IsCorrect)
		}
	}
	assert.Equal(t, 1, unanswered)
}

func TestSubmit_WrongAnswersScoreZero(t *testing.T) {
	lesson := testLesson(3)
	s, err := Start(lesson, seeded(3))
	require.NoError(t, err)

	pending := Unanswered
	for i := 0; i < 3; i++ {
		if i > 0 {
			require.NoError(t, s.Advance(pending))
		}
		q, err := s.CurrentQuestion()
		require.NoError(t, err)
		correct := indexOf(q.Options, correctText(lesson, q.Text))
		pending = (correct + 1) % len(q.Options)
	}

	res, err := s.Submit(pending)
	require.NoError(t, err)
	assert.Equal(t, 0, res.CorrectCount)
	assert.Equal(t, 0, res.Percentage)
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.CertificateEligible())
	for _, item := range res.Items {
		assert.NotEqual(t, "unanswered", item.Chosen)
	}
}

func TestPercentageRounding(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for correct := 0; correct <= total; correct++ {
			got := ratio(100, correct, total)
			want := int(float64(100*correct)/float64(total) + 0.5)
			assert.Equal(t, want, got, "correct=%d total=%d", correct, total)
		}
	}
}

func TestSelectAnswer_OutOfRange(t *testing.T) {
	s, err := Start(testLesson(2), seeded(1))
	require.NoError(t, err)

	assert.ErrorIs(t, s.SelectAnswer(-1), ErrOptionOutOfRange)
	assert.ErrorIs(t, s.SelectAnswer(4), ErrOptionOutOfRange)
	assert.ErrorIs(t, s.Advance(9), ErrOptionOutOfRange)
	assert.Equal(t, 1, s.Progress().Current)
}

func TestSelectAnswer_Overwrites(t *testing.T) {
	s, err := Start(testLesson(1), seeded(5))
	require.NoError(t, err)

	require.NoError(t, s.SelectAnswer(0))
	require.NoError(t, s.SelectAnswer(2))

	q, err := s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, 2, q.Selected)
	assert.Equal(t, 1, s.Progress().Answered)
}

func TestNavigationClampsAndKeepsAnswers(t *testing.T) {
	s, err := Start(testLesson(3), seeded(9))
	require.NoError(t, err)

	require.NoError(t, s.Retreat(1))
	assert.Equal(t, 1, s.Progress().Current)

	require.NoError(t, s.Advance(Unanswered))
	require.NoError(t, s.Advance(2))
	require.NoError(t, s.Advance(Unanswered))
	assert.Equal(t, 3, s.Progress().Current)

	require.NoError(t, s.Retreat(Unanswered))
	q, err := s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, 2, q.Selected)

	require.NoError(t, s.Retreat(Unanswered))
	q, err = s.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Selected)
	assert.Equal(t, 2, s.Progress().Answered)
}

func TestRetryResets(t *testing.T) {
	lesson := testLesson(4)
	s, err := Start(lesson, seeded(11))
	require.NoError(t, err)

	require.NoError(t, s.Advance(0))
	require.NoError(t, s.Advance(1))

	fresh, err := s.Retry()
	require.NoError(t, err)

	p := fresh.Progress()
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, 0, p.Answered)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, lesson.ID, fresh.LessonID())
	for _, a := range fresh.answers {
		assert.Equal(t, Unanswered, a)
	}
}

func TestZeroSessionReturnsErrNoQuestions(t *testing.T) {
	var s Session

	_, err := s.CurrentQuestion()
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.ErrorIs(t, s.SelectAnswer(0), ErrNoQuestions)
	assert.ErrorIs(t, s.Advance(Unanswered), ErrNoQuestions)
	assert.ErrorIs(t, s.Retreat(1), ErrNoQuestions)
	_, err = s.Submit(Unanswered)
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, Progress{Current: 1}, s.Progress())
}
