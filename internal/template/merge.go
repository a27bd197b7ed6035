package template

import (
	"regexp"
	"strings"
	"unicode"
)

// Header returns the block inserted above the issue body:
//
//	### Issue
//	Closes #<id>
//
//	### Authored By
//	@<handle>
//
// followed by one blank separator line.
func Header(r *Record) string {
	lines := []string{
		"### Issue",
		"Closes #" + r.SourceID,
		"",
		"### Authored By",
		"@" + r.HandleOrEmpty(),
		"",
		"",
	}
	return strings.Join(lines, "\n")
}

// Marker matches the reference line for sourceID at the start of any line.
// The id must end at a non-word character or end of input, so "10" never
// matches "Closes #101".
func Marker(sourceID string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^Closes\s+#` + regexp.QuoteMeta(sourceID) + `(?:[^0-9A-Za-z_]|$)`)
}

// Applied reports whether text already carries the reference line for sourceID.
// Any "Closes #<id>" line counts, including one the user typed by hand.
func Applied(text, sourceID string) bool {
	return Marker(sourceID).MatchString(text)
}

// Merge inserts the record's header and body into target.
//
// Merge is idempotent: when target already carries the record's reference line it
// is returned unchanged. Existing text is kept and the block is appended after it.
func Merge(target string, r *Record) string {
	if Applied(target, r.SourceID) {
		return target
	}

	block := Header(r) + r.BodyOrEmpty()
	if strings.TrimSpace(target) == "" {
		return block
	}

	return strings.TrimRightFunc(target, unicode.IsSpace) + "\n\n" + block
}
