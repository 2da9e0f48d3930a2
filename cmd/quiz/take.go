package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nodeacademy/internal/achievement"
	"nodeacademy/internal/client"
	"nodeacademy/internal/logger"
	"nodeacademy/internal/quiz"
)

const quizHelp = "Enter an option number to answer, n/p to move, s to submit, q to quit."

var takeCmd = &cobra.Command{
	Use:   "take <lesson-id>",
	Short: "Take the test for a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid lesson id %q", args[0])
		}
		c, err := newClient(cmd)
		if err != nil {
			return err
		}

		lesson, err := c.Lesson(cmd.Context(), lessonID)
		if err != nil {
			return err
		}
		session, err := quiz.Start(*lesson)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		in := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprintf(out, "%s\n%s\n\n", lesson.Title, quizHelp)

		for {
			result, submitted := runQuiz(in, out, session)
			if !submitted {
				fmt.Fprintln(out, "Quiz abandoned, nothing was saved.")
				return nil
			}
			printResult(out, result)
			submitResult(cmd, c, result)

			if !confirm(in, out, "Try again? [y/N] ") {
				return nil
			}
			if session, err = session.Retry(); err != nil {
				return err
			}
		}
	},
}

// runQuiz drives one attempt from line-based input. It returns false when the
// learner quits or input ends before submitting.
func runQuiz(in *bufio.Scanner, out io.Writer, s *quiz.Session) (quiz.Result, bool) {
	for {
		q, err := s.CurrentQuestion()
		if err != nil {
			return quiz.Result{}, false
		}
		printQuestion(out, q, s.Progress())

		fmt.Fprint(out, "> ")
		if !in.Scan() {
			return quiz.Result{}, false
		}
		input := strings.ToLower(strings.TrimSpace(in.Text()))

		switch input {
		case "n":
			_ = s.Advance(quiz.Unanswered)
		case "p":
			_ = s.Retreat(quiz.Unanswered)
		case "s":
			p := s.Progress()
			if p.Answered < p.Total && !confirm(in, out, fmt.Sprintf("%d unanswered, submit anyway? [y/N] ", p.Total-p.Answered)) {
				continue
			}
			result, err := s.Submit(quiz.Unanswered)
			if err != nil {
				return quiz.Result{}, false
			}
			return result, true
		case "q":
			return quiz.Result{}, false
		default:
			n, err := strconv.Atoi(input)
			if err != nil || s.SelectAnswer(n-1) != nil {
				fmt.Fprintln(out, quizHelp)
				continue
			}
			if q.Index < q.Total-1 {
				_ = s.Advance(quiz.Unanswered)
			}
		}
	}
}

func printQuestion(out io.Writer, q quiz.Question, p quiz.Progress) {
	fmt.Fprintf(out, "\nQuestion %d of %d (%d answered)\n%s\n", p.Current, p.Total, p.Answered, q.Text)
	for i, opt := range q.Options {
		marker := " "
		if i == q.Selected {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %d) %s\n", marker, i+1, opt)
	}
}

func printResult(out io.Writer, r quiz.Result) {
	fmt.Fprintln(out, "\nResults")
	for i, item := range r.Items {
		mark := "✗"
		if item.IsCorrect {
			mark = "✓"
		}
		fmt.Fprintf(out, "%s %d. %s\n    your answer: %s\n", mark, i+1, item.Question, item.Chosen)
		if !item.IsCorrect {
			fmt.Fprintf(out, "    correct answer: %s\n", item.Correct)
		}
	}
	fmt.Fprintf(out, "\n%d of %d correct, %d%% (score %d/%d)\n", r.CorrectCount, r.Total, r.Percentage, r.Score, quiz.MaxScore)
	if r.CertificateEligible() {
		fmt.Fprintln(out, "Congratulations, you earned the certificate for this lesson!")
	} else {
		fmt.Fprintf(out, "You need %d%% for the certificate.\n", quiz.CertificateThreshold)
	}
}

// submitResult saves the score when logged in. Failures are reported but do
// not end the session.
func submitResult(cmd *cobra.Command, c *client.Client, r quiz.Result) {
	out := cmd.OutOrStdout()
	if !c.LoggedIn() {
		fmt.Fprintln(out, "Log in to save your progress.")
		return
	}

	earned, err := c.CompleteLesson(cmd.Context(), r.LessonID, r.Score)
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(out, "Your session expired, log in again to save your progress.")
		return
	case err != nil:
		logger.FromContext(cmd.Context()).Debug("complete lesson failed", zap.Error(err))
		fmt.Fprintf(out, "Could not save your progress: %v\n", err)
		return
	}

	fmt.Fprintln(out, "Progress saved.")
	for _, id := range earned {
		if d, ok := achievement.Lookup(id); ok {
			fmt.Fprintf(out, "Achievement unlocked: %s %s\n", d.Icon, d.Title)
		}
	}

	progress, err := c.Progress(cmd.Context())
	if err != nil {
		logger.FromContext(cmd.Context()).Debug("refresh progress failed", zap.Error(err))
		return
	}
	fmt.Fprintf(out, "Course progress: %d lessons completed, total score %d\n", progress.CompletedLessons, progress.TotalScore)
}

func confirm(in *bufio.Scanner, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	return answer == "y" || answer == "yes"
}
