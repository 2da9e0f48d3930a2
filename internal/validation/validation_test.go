package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verr Error
	require.True(t, errors.As(err, &verr), "want validation.Error, got %v", err)
	assert.Equal(t, field, verr.Field)
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"learner@nodeacademy.dev", true},
		{"user+modules@mail.example.com", true},
		{"  padded@example.com  ", true},
		{"UPPER@EXAMPLE.COM", true},
		{"no-at-sign.example.com", false},
		{"trailing@", false},
		{"@example.com", false},
		{"single@tld.x", false},
		{"two words@example.com", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if tt.ok {
			assert.NoError(t, err, tt.email)
			continue
		}
		requireFieldError(t, err, "email")
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))

	// the stored form must itself validate
	assert.NoError(t, ValidateEmail(NormalizeEmail(" Grace.Hopper+Node@Example.org\t")))
}

func TestValidatePassword_Length(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"minimum length", "abc123", true},
		{"one short", "abc12", false},
		{"empty", "", false},
		{"exactly 72 bytes", strings.Repeat("x", 72), true},
		{"73 bytes", strings.Repeat("x", 73), false},
		// five runes but ten bytes still counts as five characters
		{"short multibyte", strings.Repeat("é", 5), false},
		{"six multibyte runes", strings.Repeat("é", 6), true},
		// 37 runes fits the character limit but is 74 bytes
		{"multibyte over byte limit", strings.Repeat("é", 37), false},
		{"multibyte at byte limit", strings.Repeat("é", 36), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			requireFieldError(t, err, "password")
		})
	}
}

func TestValidatePassword_Messages(t *testing.T) {
	assert.EqualError(t, ValidatePassword(""), "password: password is required")
	assert.EqualError(t, ValidatePassword("12345"), "password: password must be at least 6 characters")
	assert.EqualError(t, ValidatePassword(strings.Repeat("a", 80)), "password: password must be at most 72 bytes")
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"plain", "Ada Lovelace", true},
		{"two letters", "Al", true},
		{"apostrophe and hyphen", "Mary-Jane O'Brien", true},
		{"diaeresis", "Zoë", true},
		{"two cjk runes", "李明", true},
		{"empty", "", false},
		{"whitespace only", " \t ", false},
		{"single rune after trim", "  A  ", false},
		{"single multibyte rune", "é", false},
		{"100 multibyte runes", strings.Repeat("ü", 100), true},
		{"101 runes", strings.Repeat("ü", 101), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			requireFieldError(t, err, "name")
		})
	}
}
