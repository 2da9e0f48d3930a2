package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Error reports an invalid input field
type Error struct {
	Field   string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Error{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return Error{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return Error{Field: "password", Message: "password is required"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return Error{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return Error{Field: "password", Message: "password must be at most 72 bytes"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Error{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) < 2 {
		return Error{Field: "name", Message: "name must be at least 2 characters"}
	}
	if utf8.RuneCountInString(name) > 100 {
		return Error{Field: "name", Message: "name must be at most 100 characters"}
	}
	return nil
}
