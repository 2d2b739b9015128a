package slug

import (
	"regexp"
	"strings"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Make derives the URL slug for a post title: lowercase, strip everything
// outside [a-z0-9\s-], whitespace runs become single hyphens, hyphen runs
// collapse, leading/trailing hyphens are trimmed.
//
// Slugs are never stored; lookups recompute them from titles, so Make must
// stay deterministic across versions or published URLs break.
func Make(title string) string {
	s := strings.ToLower(title)
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
