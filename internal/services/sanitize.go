package services

import (
	"html"
	"regexp"
	"strings"
)

const (
	maxStringLength  = 500
	maxAddressLength = 1000
)

var (
	phoneRegex        = regexp.MustCompile(`^[\d\s\-\+\(\)]{7,20}$`)
	categoryNameRegex = regexp.MustCompile(`^[\w\s\-&]+$`)
)

// sanitizeString trims, HTML-escapes, and clamps a user-supplied string.
// Escaping happens here rather than at render time because stored values are
// served verbatim to the SPA.
func sanitizeString(value string, maxLength int) string {
	escaped := html.EscapeString(strings.TrimSpace(value))
	if len(escaped) > maxLength {
		return escaped[:maxLength]
	}
	return escaped
}

func validPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

func validImageURL(url string) bool {
	return strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://") ||
		strings.HasPrefix(url, "data:image/")
}
