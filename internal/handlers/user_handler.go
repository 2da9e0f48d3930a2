package handlers

import (
	"net/http"

	"nodeacademy/internal/service"
)

// UserHandler serves the authenticated user's profile and progress
type UserHandler struct {
	authService     *service.AuthService
	progressService *service.ProgressService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *service.AuthService, progressService *service.ProgressService) *UserHandler {
	return &UserHandler{
		authService:     authService,
		progressService: progressService,
	}
}

// GetProfile returns the profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	user, err := h.authService.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// UpdateProfile changes name and email
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	claims := ClaimsFromContext(r.Context())
	user, err := h.authService.UpdateProfile(r.Context(), claims.UserID, req.Name, req.Email)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updateProfileResponse{
		Message: msgProfileUpdated,
		User:    toUserResponse(user),
	})
}

// ChangePassword replaces the password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	claims := ClaimsFromContext(r.Context())
	if err := h.authService.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgPasswordUpdate})
}

// DeleteAccount removes the user and everything they own
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if err := h.authService.DeleteAccount(r.Context(), claims.UserID); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgAccountDeleted})
}

// GetProgress returns lesson progress and earned achievements. Always read
// fresh from the store.
func (h *UserHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	view, err := h.progressService.GetProgress(r.Context(), claims.UserID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, view)
}
