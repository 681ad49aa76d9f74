// Package validation contains input validation helpers shared by the
// session and group layers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{2,30}$`)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateUsername validates username length and character set.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 2-30 characters and contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail performs a shape check, not full RFC 5322 validation.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email address is not valid")
	}
	return nil
}

// ValidatePassword enforces a minimum credential length. This is a demo
// application; there is no strength policy beyond that.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

// NormalizeIdentity lowercases an identifier for case-insensitive
// username and email comparison.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
