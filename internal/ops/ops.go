package ops

import (
	"context"

	"github.com/hpungsan/quickmr/internal/template"
)

// Source is the issue page a template is captured from.
// Lookups return "" (or an error) when the page does not provide the value.
type Source interface {
	SourceID() string
	URL() string
	MergeRequestURL() string
	Title(ctx context.Context) string
	Markdown(ctx context.Context) (string, error)
	RenderedBody(ctx context.Context) string
	Labels(ctx context.Context) ([]string, error)
}

// Target is the merge request form the template is applied to.
type Target interface {
	Description() (string, error)
	SetDescription(text string) error
	// Title returns ok=false when the target has no title field.
	Title() (title string, ok bool, err error)
	SetTitle(title string) error
}

// Clipboard writes text to the user's clipboard and reports success.
type Clipboard interface {
	Write(text string) bool
}

// Notifier delivers short user-facing messages. Delivery is fire-and-forget.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify calls f(msg).
func (f NotifierFunc) Notify(msg string) { f(msg) }

// nopNotifier drops notifications.
type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// summary describes what applying rec will insert.
func summary(rec *template.Record) string {
	if t := rec.TitleOrEmpty(); t != "" {
		return `Will insert "Issue / Closes # / Authored By" plus the markdown body of: "` + t + `".`
	}
	return `Will insert "Issue / Closes # / Authored By" plus the issue markdown body.`
}
