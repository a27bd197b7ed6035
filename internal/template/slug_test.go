package template

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		sourceID string
		title    string
		expected string
	}{
		{"punctuation collapsed", "42", "Fix Bug!! in parser", "fix-bug-in-parser-42"},
		{"empty title", "7", "", "item-7"},
		{"whitespace title", "7", "   ", "item-7"},
		{"leading and trailing junk", "3", "  --Hello, World--  ", "hello-world-3"},
		{"non-ascii dropped", "5", "Café déjà vu", "caf-d-j-vu-5"},
		{"only symbols", "9", "!!!", "-9"},
		{"digits kept", "11", "Release 2.0.1", "release-2-0-1-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.sourceID, tt.title); got != tt.expected {
				t.Errorf("Slugify(%q, %q) = %q, want %q", tt.sourceID, tt.title, got, tt.expected)
			}
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	title := strings.Repeat("abcde ", 20)

	got := Slugify("100", title)

	prefix, ok := strings.CutSuffix(got, "-100")
	if !ok {
		t.Fatalf("Slugify() = %q, want suffix -100", got)
	}
	if len(prefix) != MaxSlugLen {
		t.Errorf("slug prefix length = %d, want %d", len(prefix), MaxSlugLen)
	}
}

func TestSlugify_TruncationCanLeaveTrailingDash(t *testing.T) {
	// Trimming happens before truncation, so a cut on a separator keeps the dash.
	title := strings.Repeat("a", 49) + " tail"

	got := Slugify("1", title)

	want := strings.Repeat("a", 49) + "--1"
	if got != want {
		t.Errorf("Slugify() = %q, want %q", got, want)
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	a := Slugify("42", "Add login page")
	b := Slugify("42", "Add login page")
	if a != b {
		t.Errorf("Slugify not deterministic: %q vs %q", a, b)
	}
}
