package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	apperrors "nodeacademy/internal/errors"
	"nodeacademy/internal/logger"
	"nodeacademy/internal/models"
	"nodeacademy/internal/repository"
	"nodeacademy/internal/security"
	"nodeacademy/internal/validation"
)

// WelcomeSender sends the registration email
type WelcomeSender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
}

// AuthService handles registration, login and profile management
type AuthService struct {
	users   repository.Users
	tokens  *security.TokenManager
	welcome WelcomeSender
}

// NewAuthService creates a new auth service. welcome may be nil.
func NewAuthService(users repository.Users, tokens *security.TokenManager, welcome WelcomeSender) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		welcome: welcome,
	}
}

func validationError(err error) error {
	var verr validation.Error
	if errors.As(err, &verr) {
		return apperrors.NewValidationError(verr.Field, verr.Message)
	}
	return apperrors.NewBadRequestError(err.Error())
}

// Register creates a new account. A taken email is a conflict and leaves the
// existing account untouched.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, validationError(err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, validationError(err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, validationError(err)
	}
	email = validation.NormalizeEmail(email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("a user with this email already exists")
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user, err := s.users.Create(ctx, name, email, passwordHash)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, apperrors.NewConflictError("a user with this email already exists")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	log := logger.FromContext(ctx)
	log.Info("user registered", zap.Int64("user_id", user.ID))

	if s.welcome != nil {
		if err := s.welcome.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Warn("failed to send welcome email", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

// Login checks credentials and issues a bearer token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	invalid := apperrors.NewBadRequestError("invalid email or password")

	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return "", nil, apperrors.NewInternalError(err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return "", nil, invalid
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, apperrors.NewInternalError(err)
	}
	return token, user, nil
}

// Authenticate verifies a bearer token and returns its claims
func (s *AuthService) Authenticate(token string) (*security.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.NewForbiddenError("invalid or expired token", err)
	}
	return claims, nil
}

// GetProfile returns the user behind an authenticated request
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("user", userID)
	}
	return user, nil
}

// UpdateProfile changes name and email. The email must not belong to another user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, validationError(err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, validationError(err)
	}
	email = validation.NormalizeEmail(email)

	conflict := apperrors.NewConflictError("email is already used by another user")
	taken, err := s.users.EmailTakenByOther(ctx, email, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if taken {
		return nil, conflict
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, email)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, conflict
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("user", userID)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !security.CheckPassword(currentPassword, user.PasswordHash) {
		return apperrors.NewBadRequestError("current password is incorrect")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return validationError(err)
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return apperrors.NewInternalError(err)
	}

	logger.FromContext(ctx).Info("password changed", zap.Int64("user_id", userID))
	return nil
}

// DeleteAccount removes the user with all of their progress and achievements
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("user", userID)
	}

	logger.FromContext(ctx).Info("user deleted", zap.Int64("user_id", userID))
	return nil
}
