package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpungsan/quickmr/internal/errors"
)

// maxResponseBytes bounds each issue response.
const maxResponseBytes = 5 << 20

// issuePath matches ".../-/issues/<iid>" and captures the project path and iid.
var issuePath = regexp.MustCompile(`^(.*)/-/issues/(\d+)`)

// Issue is a GitLab issue page used as a capture source.
// Page HTML is fetched at most once per Issue.
type Issue struct {
	url     *url.URL
	project string
	iid     string
	client  *http.Client
	token   string
	logger  zerolog.Logger

	pageOnce sync.Once
	page     *Page
	pageErr  error
}

// IssueOption configures an Issue.
type IssueOption func(*Issue)

// WithHTTPClient overrides the default client.
func WithHTTPClient(c *http.Client) IssueOption {
	return func(i *Issue) { i.client = c }
}

// WithTimeout sets the default client's timeout.
func WithTimeout(d time.Duration) IssueOption {
	return func(i *Issue) {
		if d > 0 {
			i.client = &http.Client{Timeout: d}
		}
	}
}

// WithToken sends token as PRIVATE-TOKEN on every request.
func WithToken(token string) IssueOption {
	return func(i *Issue) { i.token = strings.TrimSpace(token) }
}

// WithIssueLogger attaches a logger for fetch fallbacks.
func WithIssueLogger(logger zerolog.Logger) IssueOption {
	return func(i *Issue) { i.logger = logger }
}

// NewIssue prepares a source for an issue URL. Query and fragment are dropped.
// A URL that is not an issue page yields an Issue with an empty SourceID.
func NewIssue(rawURL string, opts ...IssueOption) (*Issue, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid issue URL: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.NewInvalidRequest("issue URL must use http or https scheme")
	}
	u.RawQuery = ""
	u.Fragment = ""

	i := &Issue{
		url:    u,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: zerolog.Nop(),
	}
	if m := issuePath.FindStringSubmatch(u.Path); m != nil {
		i.project = m[1]
		i.iid = m[2]
		// Normalize to the issue page itself (drops trailing segments like /designs)
		u.Path = m[0]
		u.RawPath = ""
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// SourceID returns the issue iid, or "" when the URL is not an issue page.
func (i *Issue) SourceID() string {
	return i.iid
}

// URL returns the normalized issue URL.
func (i *Issue) URL() string {
	return i.url.String()
}

// MergeRequestURL returns the new-MR page prefilled with this issue's iid.
func (i *Issue) MergeRequestURL() string {
	if i.iid == "" {
		return ""
	}
	u := *i.url
	u.Path = i.project + "/-/merge_requests/new"
	u.RawQuery = url.Values{"issue_iid": []string{i.iid}}.Encode()
	return u.String()
}

// Markdown fetches the raw description from "<issue>.json".
// GitLab exposes it as "description" or, in some versions, "issue.description".
func (i *Issue) Markdown(ctx context.Context) (string, error) {
	u := *i.url
	u.Path += ".json"
	endpoint := u.String()

	body, err := i.get(ctx, endpoint, "application/json")
	if err != nil {
		return "", err
	}

	var payload struct {
		Description *string `json:"description"`
		Issue       *struct {
			Description *string `json:"description"`
		} `json:"issue"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", errors.NewSourceFetchFailed(endpoint, err)
	}

	switch {
	case payload.Description != nil:
		return strings.TrimSpace(*payload.Description), nil
	case payload.Issue != nil && payload.Issue.Description != nil:
		return strings.TrimSpace(*payload.Issue.Description), nil
	}
	return "", errors.NewSourceFetchFailed(endpoint, fmt.Errorf("no description in response"))
}

// Page fetches and parses the issue HTML once; later calls return the cached result.
func (i *Issue) Page(ctx context.Context) (*Page, error) {
	i.pageOnce.Do(func() {
		body, err := i.get(ctx, i.url.String(), "text/html")
		if err != nil {
			i.pageErr = err
			return
		}
		i.page, i.pageErr = ParsePage(bytes.NewReader(body))
		if i.pageErr != nil {
			i.pageErr = errors.NewSourceFetchFailed(i.url.String(), i.pageErr)
		}
	})
	return i.page, i.pageErr
}

// Title returns the page title, or "" if the page is unavailable.
func (i *Issue) Title(ctx context.Context) string {
	p, err := i.Page(ctx)
	if err != nil {
		i.logger.Warn().Err(err).Msg("issue page unavailable for title")
		return ""
	}
	return p.Title()
}

// RenderedBody returns the rendered description text, or "" if unavailable.
func (i *Issue) RenderedBody(ctx context.Context) string {
	p, err := i.Page(ctx)
	if err != nil {
		return ""
	}
	return p.RenderedBody()
}

// Labels returns the page labels.
func (i *Issue) Labels(ctx context.Context) ([]string, error) {
	p, err := i.Page(ctx)
	if err != nil {
		return nil, err
	}
	return p.Labels(), nil
}

// UsernameLookups returns the page-derived username strategies.
func (i *Issue) UsernameLookups() []Provider[string] {
	return UsernameLookups(i.Page)
}

// get performs one best-effort GET. Non-2xx responses are errors.
func (i *Issue) get(ctx context.Context, endpoint, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewSourceFetchFailed(endpoint, err)
	}
	req.Header.Set("Accept", accept)
	if i.token != "" {
		req.Header.Set("PRIVATE-TOKEN", i.token)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, errors.NewSourceFetchFailed(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewSourceFetchFailed(endpoint, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NewSourceFetchFailed(endpoint, err)
	}
	return body, nil
}
