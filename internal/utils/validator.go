package utils

import (
	"regexp"
	"strings"
)

const MinPasswordLength = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address. This is
// defense-in-depth only; the unique index is the authoritative check.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPassword enforces the minimum secret length.
func ValidPassword(s string) bool {
	return len(s) >= MinPasswordLength
}

// UsernameFromEmail derives the default display name from the local part
// of an email address.
func UsernameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
