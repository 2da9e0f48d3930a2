package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nodeacademy/internal/achievement"
	"nodeacademy/internal/catalog"
	apperrors "nodeacademy/internal/errors"
	"nodeacademy/internal/service"
)

// LessonHandler serves the lesson catalog and records completions
type LessonHandler struct {
	lessons         *catalog.Catalog
	progressService *service.ProgressService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(lessons *catalog.Catalog, progressService *service.ProgressService) *LessonHandler {
	return &LessonHandler{
		lessons:         lessons,
		progressService: progressService,
	}
}

func lessonIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "lessonId"))
	if err != nil {
		return 0, apperrors.NewBadRequestError(msgInvalidLesson)
	}
	return id, nil
}

// ListLessons returns lesson summaries ordered by id
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.lessons.List())
}

// GetLesson returns one lesson including its test
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, err := lessonIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	lesson, ok := h.lessons.Get(id)
	if !ok {
		handleError(w, r, apperrors.NewNotFoundError("lesson", id))
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

// CompleteLesson records the caller's score for a lesson
func (h *LessonHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, err := lessonIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req completeLessonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Score == nil {
		handleError(w, r, apperrors.NewValidationError("score", "is required"))
		return
	}

	claims := ClaimsFromContext(r.Context())
	earned, err := h.progressService.CompleteLesson(r.Context(), claims.UserID, lessonID, *req.Score)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, completeLessonResponse{
		Message:         msgLessonComplete,
		NewAchievements: earned,
	})
}

// ListAchievements returns the achievement catalog
func (h *LessonHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, achievement.Catalog())
}
