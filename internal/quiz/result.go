package quiz

import "math"

const (
	// MaxScore is the stored score for a fully correct test
	MaxScore = 50
	// CertificateThreshold is the percentage needed for a certificate
	CertificateThreshold = 80
)

// ItemResult is the outcome for one question
type ItemResult struct {
	Question    string
	Chosen      string // option text, or "unanswered"
	Correct     string
	IsCorrect   bool
	ChosenIndex int // original option index, or Unanswered
}

// Result is the scored outcome of a session
type Result struct {
	LessonID     int
	Items        []ItemResult
	CorrectCount int
	Total        int
	Percentage   int
	// Score is the value stored as lesson progress, in [0, MaxScore]
	Score int
}

// CertificateEligible reports whether the result earns a certificate
func (r Result) CertificateEligible() bool {
	return r.Percentage >= CertificateThreshold
}

// Submit commits the pending selection and scores every question against the
// answer key captured at Start. Unanswered questions count as incorrect.
func (s *Session) Submit(pending int) (Result, error) {
	if len(s.questions) == 0 {
		return Result{}, ErrNoQuestions
	}
	if err := s.commit(pending); err != nil {
		return Result{}, err
	}

	res := Result{
		LessonID: s.lesson.ID,
		Items:    make([]ItemResult, len(s.questions)),
		Total:    len(s.questions),
	}
	for i, q := range s.questions {
		item := ItemResult{
			Question:    q.text,
			Chosen:      "unanswered",
			ChosenIndex: s.answers[i],
		}
		if q.originalCorrect >= 0 && q.originalCorrect < len(q.options) {
			item.Correct = q.options[q.originalCorrect]
		}
		if s.answers[i] != Unanswered {
			item.Chosen = q.options[s.answers[i]]
			item.IsCorrect = s.answers[i] == q.originalCorrect
		}
		if item.IsCorrect {
			res.CorrectCount++
		}
		res.Items[i] = item
	}

	res.Percentage = ratio(100, res.CorrectCount, res.Total)
	res.Score = ratio(MaxScore, res.CorrectCount, res.Total)
	return res, nil
}

func ratio(scale, correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(scale) * float64(correct) / float64(total)))
}
