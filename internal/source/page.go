package source

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selectors for the GitLab issue page. Title and body candidates are tried in
// priority order; labels and header names are taken in document order.
var (
	titleSelectors = []cascadia.Selector{
		cascadia.MustCompile("h1.title"),
		cascadia.MustCompile("h1.issuable-title"),
		cascadia.MustCompile(".detail-page-header-title"),
		cascadia.MustCompile(".page-title"),
	}
	bodySelectors = []cascadia.Selector{
		cascadia.MustCompile(".issuable-description .md"),
		cascadia.MustCompile(".issue-details .description .md"),
		cascadia.MustCompile(".detail-page-description .md"),
		cascadia.MustCompile(".description .md"),
	}
	labelSelector = cascadia.MustCompile(".labels .label, .issuable-show-labels .label, [data-label-name]")
	userMetaTags  = []cascadia.Selector{
		cascadia.MustCompile(`meta[name="user-login"]`),
		cascadia.MustCompile(`meta[name="current-user-login"]`),
		cascadia.MustCompile(`meta[name="current-user-username"]`),
		cascadia.MustCompile(`meta[name="current-user"]`),
	}
	avatarSelector     = cascadia.MustCompile("[data-username]")
	headerUserSelector = cascadia.MustCompile(".header-user .user-name, .header-user span")
	scriptSelector     = cascadia.MustCompile("script")
)

// gonUsername matches the current user assignments GitLab emits into its gon script:
// gon.current_username = "x", gon.current_user_username = "x", and the nested
// gon.current_user = {..."username":"x"...} object.
var gonUsername = regexp.MustCompile(
	`gon\.current_user(?:name|_username)\s*=\s*"([^"]+)"` +
		`|gon\.current_user\s*=\s*\{[^}]*?"username"\s*:\s*"([^"]+)"`,
)

// Page is a parsed issue page.
type Page struct {
	root *html.Node
}

// ParsePage parses an issue page's HTML.
func ParsePage(r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Page{root: root}, nil
}

// Title returns the first non-empty title, or "".
func (p *Page) Title() string {
	for _, sel := range titleSelectors {
		if n := cascadia.Query(p.root, sel); n != nil {
			if t := strings.TrimSpace(textContent(n)); t != "" {
				return t
			}
		}
	}
	return ""
}

// RenderedBody returns the rendered description text of the first matching
// description container, or "" when none exists.
func (p *Page) RenderedBody() string {
	for _, sel := range bodySelectors {
		if n := cascadia.Query(p.root, sel); n != nil {
			return innerText(n)
		}
	}
	return ""
}

// Labels returns label names in page order. Elements without text fall back
// to their data-label-name attribute.
func (p *Page) Labels() []string {
	var labels []string
	for _, n := range cascadia.QueryAll(p.root, labelSelector) {
		name := strings.TrimSpace(textContent(n))
		if name == "" {
			name = strings.TrimSpace(attr(n, "data-label-name"))
		}
		if name != "" {
			labels = append(labels, name)
		}
	}
	return labels
}

// GonUsername reads the current username from GitLab's inline gon script.
func (p *Page) GonUsername() string {
	for _, n := range cascadia.QueryAll(p.root, scriptSelector) {
		if m := gonUsername.FindStringSubmatch(textContent(n)); m != nil {
			return strings.TrimSpace(m[1] + m[2])
		}
	}
	return ""
}

// MetaUsername reads the first user meta tag. Values may look like "username:foo".
func (p *Page) MetaUsername() string {
	for _, sel := range userMetaTags {
		n := cascadia.Query(p.root, sel)
		if n == nil {
			continue
		}
		content := strings.TrimSpace(attr(n, "content"))
		if content == "" {
			continue
		}
		parts := strings.Split(content, ":")
		return strings.TrimSpace(parts[len(parts)-1])
	}
	return ""
}

// AvatarUsername reads the first data-username attribute.
func (p *Page) AvatarUsername() string {
	if n := cascadia.Query(p.root, avatarSelector); n != nil {
		return strings.TrimSpace(attr(n, "data-username"))
	}
	return ""
}

// HeaderUsername reads the user name shown in the page header, without a leading "@".
func (p *Page) HeaderUsername() string {
	for _, n := range cascadia.QueryAll(p.root, headerUserSelector) {
		if t := strings.TrimSpace(textContent(n)); t != "" {
			return strings.TrimPrefix(t, "@")
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// UsernameLookups returns the page's username strategies in priority order.
// load is called lazily so pages are only fetched when a lookup runs.
func UsernameLookups(load func(ctx context.Context) (*Page, error)) []Provider[string] {
	from := func(get func(*Page) string) Provider[string] {
		return TextOrError(func(ctx context.Context) (string, error) {
			p, err := load(ctx)
			if err != nil {
				return "", err
			}
			return get(p), nil
		})
	}
	return []Provider[string]{
		from((*Page).GonUsername),
		from((*Page).MetaUsername),
		from((*Page).AvatarUsername),
		from((*Page).HeaderUsername),
	}
}
