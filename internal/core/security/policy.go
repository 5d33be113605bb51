package security

import (
	"unicode"
	"unicode/utf8"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
)

const minPasswordLength = 8

const weakPasswordMessage = "must be at least 8 characters and contain an uppercase letter, a lowercase letter and a digit"

// IsStrong reports whether password meets the registration policy: at least
// eight characters with one lowercase letter, one uppercase letter and one
// digit. There is no upper bound and no excluded character class.
func IsStrong(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return false
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// CheckPassword returns a ValidationError on the password field when the
// policy is not met.
func CheckPassword(password string) error {
	if !IsStrong(password) {
		return domain.NewValidationError("password", weakPasswordMessage)
	}
	return nil
}
