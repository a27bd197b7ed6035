package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/quickmr/internal/errors"
)

func TestNewIssue_ParsesURL(t *testing.T) {
	issue, err := NewIssue("https://gitlab.example.com/group/proj/-/issues/42/designs?x=1#note_3")
	require.NoError(t, err)

	require.Equal(t, "42", issue.SourceID())
	require.Equal(t, "https://gitlab.example.com/group/proj/-/issues/42", issue.URL())
	require.Equal(t, "https://gitlab.example.com/group/proj/-/merge_requests/new?issue_iid=42", issue.MergeRequestURL())
}

func TestNewIssue_NotAnIssuePage(t *testing.T) {
	issue, err := NewIssue("https://gitlab.example.com/group/proj/-/merge_requests/7")
	require.NoError(t, err)

	require.Equal(t, "", issue.SourceID())
	require.Equal(t, "", issue.MergeRequestURL())
}

func TestNewIssue_RejectsBadScheme(t *testing.T) {
	_, err := NewIssue("ftp://gitlab.example.com/g/p/-/issues/1")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = NewIssue("://nope")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func newIssueServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestIssue_MarkdownTopLevel(t *testing.T) {
	base := newIssueServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/g/p/-/issues/5.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "secret", r.Header.Get("PRIVATE-TOKEN"))
		_, _ = w.Write([]byte(`{"description": "  ## Raw\n\n- [ ] task  "}`))
	})

	issue, err := NewIssue(base+"/g/p/-/issues/5", WithToken("secret"))
	require.NoError(t, err)

	md, err := issue.Markdown(context.Background())
	require.NoError(t, err)
	require.Equal(t, "## Raw\n\n- [ ] task", md)
}

func TestIssue_MarkdownNested(t *testing.T) {
	base := newIssueServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"issue": {"description": "nested body"}}`))
	})

	issue, err := NewIssue(base + "/g/p/-/issues/5")
	require.NoError(t, err)

	md, err := issue.Markdown(context.Background())
	require.NoError(t, err)
	require.Equal(t, "nested body", md)
}

func TestIssue_MarkdownFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) }},
		{"no description", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"title":"x"}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := newIssueServer(t, tt.handler)
			issue, err := NewIssue(base + "/g/p/-/issues/5")
			require.NoError(t, err)

			_, err = issue.Markdown(context.Background())
			require.True(t, errors.Is(err, errors.ErrSourceFetchFailed), "got %v", err)
		})
	}
}

func TestIssue_PageFetchedOnce(t *testing.T) {
	var hits atomic.Int32
	base := newIssueServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/g/p/-/issues/5", r.URL.Path)
		_, _ = w.Write([]byte(issuePageHTML))
	})

	issue, err := NewIssue(base + "/g/p/-/issues/5")
	require.NoError(t, err)
	ctx := context.Background()

	require.Equal(t, "Add login page", issue.Title(ctx))
	require.Contains(t, issue.RenderedBody(ctx), "Users need to log in.")

	labels, err := issue.Labels(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"backend", "auth", "priority::high"}, labels)

	user, ok := First(ctx, issue.UsernameLookups()...)
	require.True(t, ok)
	require.Equal(t, "gon-user", user)

	require.Equal(t, int32(1), hits.Load())
}

func TestIssue_PageUnavailable(t *testing.T) {
	base := newIssueServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	issue, err := NewIssue(base + "/g/p/-/issues/5")
	require.NoError(t, err)
	ctx := context.Background()

	require.Equal(t, "", issue.Title(ctx))
	require.Equal(t, "", issue.RenderedBody(ctx))

	_, err = issue.Labels(ctx)
	require.True(t, errors.Is(err, errors.ErrSourceFetchFailed))
}
