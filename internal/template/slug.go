package template

import (
	"regexp"
	"strings"
)

// MaxSlugLen caps the title part of a slug (the "-<id>" suffix is not counted).
const MaxSlugLen = 50

// nonSlugRun matches one or more characters outside [a-z0-9]
var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns an issue title into a branch-safe token ending in "-<sourceID>".
// An empty title yields "item-<sourceID>".
func Slugify(sourceID, title string) string {
	if strings.TrimSpace(title) == "" {
		return "item-" + sourceID
	}

	slug := nonSlugRun.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	// Only ASCII survives the replace, so byte truncation is safe.
	if len(slug) > MaxSlugLen {
		slug = slug[:MaxSlugLen]
	}

	return slug + "-" + sourceID
}
