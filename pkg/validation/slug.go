package validation

import (
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonAlnumRegex = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidEmail reports whether the value looks like an email address.
func ValidEmail(value string) bool {
	return emailRegex.MatchString(strings.TrimSpace(value))
}

// Slugify converts a course title into a URL-friendly slug: lowercase,
// non-alphanumeric runs collapsed into single hyphens, trimmed.
func Slugify(title string) string {
	slug := nonAlnumRegex.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
