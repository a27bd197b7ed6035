package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpungsan/quickmr/internal/handoff"
	"github.com/hpungsan/quickmr/internal/source"
	"github.com/hpungsan/quickmr/internal/template"
)

// Body sources reported by Capture.
const (
	BodyFromMarkdown = "markdown"
	BodyFromRendered = "rendered"
	BodyNone         = "none"
)

// CaptureInput contains parameters for the Capture operation.
type CaptureInput struct {
	Source Source
	// UserLookups resolve the author handle, first hit wins.
	UserLookups []source.Provider[string]
}

// CaptureOutput contains the result of the Capture operation.
type CaptureOutput struct {
	Captured        bool      `json:"captured"`
	CaptureID       string    `json:"capture_id,omitempty"`
	IssueNumber     string    `json:"issue_number,omitempty"`
	Title           string    `json:"title,omitempty"`
	Username        string    `json:"username,omitempty"`
	Labels          []string  `json:"labels,omitempty"`
	BodySource      string    `json:"body_source,omitempty"`
	BodyChars       int       `json:"body_chars"`
	SuggestedBranch string    `json:"suggested_branch,omitempty"`
	MergeRequestURL string    `json:"merge_request_url,omitempty"`
	ExpiresAt       time.Time `json:"expires_at,omitzero"`
}

// Capture gathers a template from the issue source and stores it in the handoff
// store, replacing any pending template.
//
// A source without an issue number is a silent no-op. A store failure is notified
// and returned as STORAGE_FAULT.
func Capture(ctx context.Context, store *handoff.Store, notifier Notifier, input CaptureInput) (*CaptureOutput, error) {
	logger := zerolog.Ctx(ctx)
	notifier = notifierOrNop(notifier)

	src := input.Source
	if src == nil || src.SourceID() == "" {
		logger.Debug().Msg("no issue number in source, nothing to capture")
		return &CaptureOutput{Captured: false}, nil
	}
	issueNumber := src.SourceID()

	title := src.Title(ctx)

	bodySource := BodyNone
	markdown := source.TextOrError(func(ctx context.Context) (string, error) {
		md, err := src.Markdown(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("issue", issueNumber).Msg("markdown fetch failed, using rendered text")
		}
		return md, err
	})
	rendered := source.Text(src.RenderedBody)
	body, ok := source.First(ctx,
		tagged(markdown, &bodySource, BodyFromMarkdown),
		tagged(rendered, &bodySource, BodyFromRendered),
	)
	if !ok {
		logger.Warn().Str("issue", issueNumber).Msg("issue body empty, capturing without body")
	}

	username, _ := source.First(ctx, input.UserLookups...)

	labels, err := src.Labels(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("issue", issueNumber).Msg("could not extract labels")
		labels = nil
	}

	stored, err := store.Put(ctx, &template.Record{
		SourceID:     issueNumber,
		Title:        template.StringPtr(title),
		Body:         template.StringPtr(body),
		AuthorHandle: template.StringPtr(username),
		Labels:       labels,
		SourceURL:    src.URL(),
	})
	if err != nil {
		notifier.Notify(fmt.Sprintf("Failed to save MR template: %v", err))
		return nil, err
	}

	notifier.Notify(fmt.Sprintf("MR template prepared from issue #%s", issueNumber))
	logger.Info().
		Str("capture_id", stored.CaptureID).
		Str("issue", issueNumber).
		Str("body_source", bodySource).
		Int("labels", len(labels)).
		Msg("template captured")

	return &CaptureOutput{
		Captured:        true,
		CaptureID:       stored.CaptureID,
		IssueNumber:     issueNumber,
		Title:           title,
		Username:        username,
		Labels:          labels,
		BodySource:      bodySource,
		BodyChars:       len([]rune(body)),
		SuggestedBranch: template.Slugify(issueNumber, title),
		MergeRequestURL: src.MergeRequestURL(),
		ExpiresAt:       time.UnixMilli(stored.CreatedAt).Add(store.TTL()).UTC(),
	}, nil
}

// tagged records which provider produced the hit.
func tagged(p source.Provider[string], dst *string, tag string) source.Provider[string] {
	return func(ctx context.Context) (string, bool) {
		v, ok := p(ctx)
		if ok {
			*dst = tag
		}
		return v, ok
	}
}
