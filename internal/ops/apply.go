package ops

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hpungsan/quickmr/internal/errors"
	"github.com/hpungsan/quickmr/internal/handoff"
	"github.com/hpungsan/quickmr/internal/template"
)

// State is the apply session state.
type State string

const (
	StateNoTemplate State = "no_template"
	StatePending    State = "pending"
	StateApplied    State = "applied"
)

// Notification texts.
const (
	msgApplied      = "Issue template applied to MR description."
	msgCopied       = "MR description copied to clipboard"
	msgBranchCopied = "Branch name copied to clipboard"
)

// SessionDeps are the collaborators of an apply session.
type SessionDeps struct {
	Target    Target
	Clipboard Clipboard
	Notifier  Notifier
}

// Session offers a pending template to the merge request form.
// Apply and Dismiss end the session; Copy leaves the template pending.
type Session struct {
	store  *handoff.Store
	deps   SessionDeps
	record *template.Record
	state  State
}

// ApplyOutput contains the result of the Apply action.
type ApplyOutput struct {
	IssueNumber    string   `json:"issue_number"`
	Description    string   `json:"description"`
	Title          string   `json:"title,omitempty"`
	TitleFilled    bool     `json:"title_filled"`
	AlreadyApplied bool     `json:"already_applied"`
	Labels         []string `json:"labels,omitempty"`
}

// CopyOutput contains the result of the Copy and CopyBranch actions.
type CopyOutput struct {
	IssueNumber string `json:"issue_number"`
	Text        string `json:"text"`
}

// DismissOutput contains the result of the Dismiss action.
type DismissOutput struct {
	IssueNumber string `json:"issue_number"`
	Dismissed   bool   `json:"dismissed"`
}

// OpenSession reads the handoff store and opens a session on whatever it holds.
// An empty or expired store yields a session in StateNoTemplate.
func OpenSession(ctx context.Context, store *handoff.Store, deps SessionDeps) (*Session, error) {
	rec, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}
	deps.Notifier = notifierOrNop(deps.Notifier)

	s := &Session{store: store, deps: deps, record: rec, state: StateNoTemplate}
	if rec != nil {
		s.state = StatePending
		zerolog.Ctx(ctx).Debug().
			Str("issue", rec.SourceID).
			Str("capture_id", rec.CaptureID).
			Msg("pending template found")
	}
	return s, nil
}

// State returns the current session state.
func (s *Session) State() State { return s.state }

// Record returns the pending record, or nil when none is pending.
func (s *Session) Record() *template.Record {
	if s.state != StatePending {
		return nil
	}
	return s.record
}

// Summary describes what Apply will insert.
func (s *Session) Summary() string {
	if s.record == nil {
		return ""
	}
	return summary(s.record)
}

// Apply merges the template into the target description, fills an empty title,
// and clears the store.
func (s *Session) Apply(ctx context.Context) (*ApplyOutput, error) {
	if err := s.requirePending(); err != nil {
		return nil, err
	}
	if s.deps.Target == nil {
		return nil, errors.NewInvalidRequest("apply requires a target")
	}
	rec := s.record

	current, err := s.deps.Target.Description()
	if err != nil {
		return nil, err
	}
	merged := template.Merge(current, rec)
	if err := s.deps.Target.SetDescription(merged); err != nil {
		return nil, err
	}

	out := &ApplyOutput{
		IssueNumber:    rec.SourceID,
		Description:    merged,
		AlreadyApplied: merged == current,
		Labels:         rec.Labels,
	}

	title, hasTitle, err := s.deps.Target.Title()
	if err != nil {
		return nil, err
	}
	out.Title = title
	if hasTitle && strings.TrimSpace(title) == "" && rec.TitleOrEmpty() != "" {
		if err := s.deps.Target.SetTitle(rec.TitleOrEmpty()); err != nil {
			return nil, err
		}
		out.Title = rec.TitleOrEmpty()
		out.TitleFilled = true
	}

	if err := s.store.Clear(ctx); err != nil {
		return nil, err
	}
	s.state = StateApplied
	s.deps.Notifier.Notify(msgApplied)

	zerolog.Ctx(ctx).Info().
		Str("issue", rec.SourceID).
		Bool("already_applied", out.AlreadyApplied).
		Bool("title_filled", out.TitleFilled).
		Msg("template applied")
	return out, nil
}

// Copy puts the merged description on the clipboard without touching the target
// or the store.
func (s *Session) Copy(ctx context.Context) (*CopyOutput, error) {
	if err := s.requirePending(); err != nil {
		return nil, err
	}
	current := ""
	if s.deps.Target != nil {
		var err error
		if current, err = s.deps.Target.Description(); err != nil {
			return nil, err
		}
	}
	text := template.Merge(current, s.record)
	if err := s.write(text); err != nil {
		return nil, err
	}
	s.deps.Notifier.Notify(msgCopied)
	zerolog.Ctx(ctx).Info().Str("issue", s.record.SourceID).Msg("template copied")
	return &CopyOutput{IssueNumber: s.record.SourceID, Text: text}, nil
}

// CopyBranch puts the suggested branch name on the clipboard.
func (s *Session) CopyBranch(ctx context.Context) (*CopyOutput, error) {
	if err := s.requirePending(); err != nil {
		return nil, err
	}
	branch := template.Slugify(s.record.SourceID, s.record.TitleOrEmpty())
	if err := s.write(branch); err != nil {
		return nil, err
	}
	s.deps.Notifier.Notify(msgBranchCopied)
	zerolog.Ctx(ctx).Debug().Str("branch", branch).Msg("branch copied")
	return &CopyOutput{IssueNumber: s.record.SourceID, Text: branch}, nil
}

// Dismiss discards the pending template. The target is left untouched.
func (s *Session) Dismiss(ctx context.Context) (*DismissOutput, error) {
	if err := s.requirePending(); err != nil {
		return nil, err
	}
	if err := s.store.Clear(ctx); err != nil {
		return nil, err
	}
	s.state = StateApplied
	zerolog.Ctx(ctx).Info().Str("issue", s.record.SourceID).Msg("template dismissed")
	return &DismissOutput{IssueNumber: s.record.SourceID, Dismissed: true}, nil
}

func (s *Session) requirePending() error {
	if s.state != StatePending {
		return errors.NewNoPendingTemplate(string(s.state))
	}
	return nil
}

func (s *Session) write(text string) error {
	if s.deps.Clipboard == nil || !s.deps.Clipboard.Write(text) {
		return errors.NewClipboardUnavailable()
	}
	return nil
}
