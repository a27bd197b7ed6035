package ops

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/quickmr/internal/errors"
	"github.com/hpungsan/quickmr/internal/handoff"
	"github.com/hpungsan/quickmr/internal/template"
)

// StatusOutput describes the handoff store contents.
type StatusOutput struct {
	State           State     `json:"state"`
	IssueNumber     string    `json:"issue_number,omitempty"`
	Title           string    `json:"title,omitempty"`
	Username        string    `json:"username,omitempty"`
	Labels          []string  `json:"labels,omitempty"`
	CaptureID       string    `json:"capture_id,omitempty"`
	SourceURL       string    `json:"source_url,omitempty"`
	SuggestedBranch string    `json:"suggested_branch,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	ExpiresAt       time.Time `json:"expires_at,omitzero"`
	ExpiresIn       string    `json:"expires_in,omitempty"`
}

// Status reports the pending template, if any. Expired records are purged as on
// any other read.
func Status(ctx context.Context, store *handoff.Store) (*StatusOutput, error) {
	rec, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &StatusOutput{State: StateNoTemplate}, nil
	}

	created := time.UnixMilli(rec.CreatedAt).UTC()
	expires := created.Add(store.TTL())
	left := expires.Sub(store.Now()).Truncate(time.Second)

	return &StatusOutput{
		State:           StatePending,
		IssueNumber:     rec.SourceID,
		Title:           rec.TitleOrEmpty(),
		Username:        rec.HandleOrEmpty(),
		Labels:          rec.Labels,
		CaptureID:       rec.CaptureID,
		SourceURL:       rec.SourceURL,
		SuggestedBranch: template.Slugify(rec.SourceID, rec.TitleOrEmpty()),
		Summary:         summary(rec),
		CreatedAt:       created,
		ExpiresAt:       expires,
		ExpiresIn:       left.String(),
	}, nil
}

// BranchInput contains parameters for the SuggestBranch operation.
// When IssueNumber is empty the pending template is used.
type BranchInput struct {
	IssueNumber string
	Title       string
}

// BranchOutput contains the result of the SuggestBranch operation.
type BranchOutput struct {
	IssueNumber string `json:"issue_number"`
	Branch      string `json:"branch"`
}

// SuggestBranch returns the branch name for an issue.
func SuggestBranch(ctx context.Context, store *handoff.Store, input BranchInput) (*BranchOutput, error) {
	id := strings.TrimSpace(input.IssueNumber)
	title := input.Title
	if id == "" {
		rec, err := store.Get(ctx)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, errors.NewNoPendingTemplate(string(StateNoTemplate))
		}
		id = rec.SourceID
		if title == "" {
			title = rec.TitleOrEmpty()
		}
	}
	return &BranchOutput{IssueNumber: id, Branch: template.Slugify(id, title)}, nil
}
