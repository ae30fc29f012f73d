// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// SanitizeInput trims free text and strips null bytes
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	return strings.ReplaceAll(input, "\x00", "")
}

// SanitizeList sanitizes each entry and drops the empty ones
func SanitizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = SanitizeInput(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
