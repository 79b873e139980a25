package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all HTML/script markup from user-supplied free text.
// Applied to every title/description/content/name field before validation.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// TextPtr sanitizes through a pointer, leaving nil untouched.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Text(*s)
	return &clean
}
