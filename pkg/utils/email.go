package utils

import (
	"net/mail"
	"strings"
)

const MinPasswordLength = 6

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts a bare address such as name@example.com.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Message: "The email address is badly formatted"}
	}
	return nil
}

// Nickname is the default display name: the local part of the email.
func Nickname(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
