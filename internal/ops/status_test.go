package ops

import (
	"context"
	"testing"
	"time"

	"github.com/hpungsan/quickmr/internal/errors"
	"github.com/hpungsan/quickmr/internal/handoff"
)

func TestStatus_Empty(t *testing.T) {
	store, _ := newTestStore(t)

	out, err := Status(context.Background(), store)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if out.State != StateNoTemplate {
		t.Errorf("State = %q, want %q", out.State, StateNoTemplate)
	}
	if out.IssueNumber != "" {
		t.Errorf("IssueNumber = %q, want empty", out.IssueNumber)
	}
}

func TestStatus_Pending(t *testing.T) {
	store, clock := newTestStore(t)
	stored := putLogin(t, store)
	clock.t = clock.t.Add(90 * time.Minute)

	out, err := Status(context.Background(), store)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if out.State != StatePending {
		t.Fatalf("State = %q, want %q", out.State, StatePending)
	}
	if out.CaptureID != stored.CaptureID {
		t.Errorf("CaptureID = %q, want %q", out.CaptureID, stored.CaptureID)
	}
	if out.SuggestedBranch != "add-login-10" {
		t.Errorf("SuggestedBranch = %q", out.SuggestedBranch)
	}
	if out.Username != "alice" {
		t.Errorf("Username = %q", out.Username)
	}
	if out.ExpiresIn != "2h30m0s" {
		t.Errorf("ExpiresIn = %q, want %q", out.ExpiresIn, "2h30m0s")
	}
	if !out.ExpiresAt.Equal(out.CreatedAt.Add(handoff.DefaultTTL)) {
		t.Errorf("ExpiresAt = %v, CreatedAt = %v", out.ExpiresAt, out.CreatedAt)
	}
}

func TestStatus_ExpiredIsPurged(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)
	putLogin(t, store)
	clock.t = clock.t.Add(handoff.DefaultTTL + time.Millisecond)

	out, err := Status(ctx, store)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if out.State != StateNoTemplate {
		t.Errorf("State = %q, want %q", out.State, StateNoTemplate)
	}

	// The purge is visible even after the clock goes back.
	clock.t = clock.t.Add(-time.Hour)
	if got, _ := store.Get(ctx); got != nil {
		t.Error("expired record should have been removed")
	}
}

func TestSuggestBranch(t *testing.T) {
	store, _ := newTestStore(t)

	out, err := SuggestBranch(context.Background(), store, BranchInput{IssueNumber: "42", Title: "Fix Bug!! in parser"})
	if err != nil {
		t.Fatalf("SuggestBranch failed: %v", err)
	}
	if out.Branch != "fix-bug-in-parser-42" {
		t.Errorf("Branch = %q, want %q", out.Branch, "fix-bug-in-parser-42")
	}
}

func TestSuggestBranch_FromPending(t *testing.T) {
	store, _ := newTestStore(t)
	putLogin(t, store)

	out, err := SuggestBranch(context.Background(), store, BranchInput{})
	if err != nil {
		t.Fatalf("SuggestBranch failed: %v", err)
	}
	if out.IssueNumber != "10" || out.Branch != "add-login-10" {
		t.Errorf("output = %+v", out)
	}

	out, err = SuggestBranch(context.Background(), store, BranchInput{Title: "Custom name"})
	if err != nil {
		t.Fatalf("SuggestBranch failed: %v", err)
	}
	if out.Branch != "custom-name-10" {
		t.Errorf("Branch = %q, want %q", out.Branch, "custom-name-10")
	}
}

func TestSuggestBranch_NothingPending(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := SuggestBranch(context.Background(), store, BranchInput{})
	if !errors.Is(err, errors.ErrNoPendingTemplate) {
		t.Fatalf("err = %v, want NO_PENDING_TEMPLATE", err)
	}
}
