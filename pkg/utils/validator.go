package utils

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// SanitizeString removes control characters from user input. Tabs and line
// breaks are kept so multi-line notes survive.
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
