package template

import "time"

// Record is the MR template carried from an issue page to a new merge request.
// It is stored as a flat JSON object; unknown fields are ignored on read.
type Record struct {
	// SourceID is the issue iid. It is the idempotency key for Merge.
	SourceID string `json:"issueNumber"`

	// Title is the issue title (nullable)
	Title *string `json:"title"`

	// Body is the raw issue markdown (nullable)
	Body *string `json:"body"`

	// AuthorHandle is the resolved username of the acting user (nullable)
	AuthorHandle *string `json:"username"`

	// Labels are the issue labels in page order
	Labels []string `json:"labels"`

	// CreatedAt is the capture timestamp in epoch milliseconds
	CreatedAt int64 `json:"createdAt"`

	// CaptureID is a ULID assigned when the record is stored
	CaptureID string `json:"captureId,omitempty"`

	// SourceURL is the issue URL the record was captured from
	SourceURL string `json:"sourceUrl,omitempty"`
}

// TitleOrEmpty returns the title, or "" when unset.
func (r *Record) TitleOrEmpty() string {
	return deref(r.Title)
}

// BodyOrEmpty returns the body, or "" when unset.
func (r *Record) BodyOrEmpty() string {
	return deref(r.Body)
}

// HandleOrEmpty returns the author handle, or "" when unset.
func (r *Record) HandleOrEmpty() string {
	return deref(r.AuthorHandle)
}

// Age returns how long ago the record was captured.
func (r *Record) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(r.CreatedAt))
}

// Expired reports whether the record is older than ttl.
// A record without a timestamp is always expired.
func (r *Record) Expired(now time.Time, ttl time.Duration) bool {
	if r.CreatedAt == 0 {
		return true
	}
	return now.UnixMilli()-r.CreatedAt > ttl.Milliseconds()
}

// StringPtr returns nil for "" and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
