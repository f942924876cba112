package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugStripPattern    = regexp.MustCompile(`[^\w\s-]+`)
	slugCollapsePattern = regexp.MustCompile(`[\s_-]+`)
	slugTrimPattern     = regexp.MustCompile(`^-+|-+$`)
)

// GenerateSlug turns a display name into a URL-safe identifier.
// Total and deterministic; empty input yields the empty string.
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugCollapsePattern.ReplaceAllString(slug, "-")
	slug = slugTrimPattern.ReplaceAllString(slug, "")
	return slug
}

// Slugged is anything carrying a slug, used for uniqueness checks.
type Slugged interface {
	RecordSlug() string
}

// GenerateUniqueSlug computes the base slug for name and suffixes -1, -2, …
// until no existing item collides.
func GenerateUniqueSlug[T Slugged](name string, existing []T) string {
	base := GenerateSlug(name)
	slug := base
	counter := 1

	for slugTaken(slug, existing) {
		slug = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
	return slug
}

func slugTaken[T Slugged](slug string, existing []T) bool {
	for _, item := range existing {
		if item.RecordSlug() == slug {
			return true
		}
	}
	return false
}
