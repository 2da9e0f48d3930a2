package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "nodeacademy/internal/errors"
)

// RouterConfig collects the handlers and middleware the API is built from
type RouterConfig struct {
	Logger      *zap.Logger
	CORSOrigins []string
	Middleware  *Middleware
	Auth        *AuthHandler
	Users       *UserHandler
	Lessons     *LessonHandler
	Health      *HealthHandler
}

// NewRouter builds the /api router
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := cfg.Middleware

	r := chi.NewRouter()
	r.Use(Logging(log))
	r.Use(Recovery)
	r.Use(SecurityHeaders)
	r.Use(CORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", cfg.Health.Health)
		r.Get("/lessons", cfg.Lessons.ListLessons)
		r.Get("/lessons/{lessonId}", cfg.Lessons.GetLesson)
		r.Get("/achievements", cfg.Lessons.ListAchievements)

		r.Route("/auth", func(r chi.Router) {
			r.With(m.RateLimit).Post("/register", cfg.Auth.Register)
			r.With(m.RateLimit).Post("/login", cfg.Auth.Login)
			r.With(m.RequireAuth).Get("/verify", cfg.Auth.Verify)
		})

		r.Group(func(r chi.Router) {
			r.Use(m.RequireAuth)

			r.Get("/user/profile", cfg.Users.GetProfile)
			r.Put("/user/profile", cfg.Users.UpdateProfile)
			r.Put("/user/change-password", cfg.Users.ChangePassword)
			r.Get("/user/progress", cfg.Users.GetProgress)
			r.Delete("/user", cfg.Users.DeleteAccount)
			r.Post("/lessons/{lessonId}/complete", cfg.Lessons.CompleteLesson)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, apperrors.ErrCodeNotFound, "route not found")
	})
	return r
}
