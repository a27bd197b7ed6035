package source

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t\n\r\f\v]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// innerText approximates a browser's innerText for rendered markdown:
// block elements start new lines, whitespace collapses outside <pre>,
// and script/style content is skipped. Text inside <pre> is kept verbatim.
func innerText(n *html.Node) string {
	var w textWriter
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, pre bool) {
		switch n.Type {
		case html.TextNode:
			if pre {
				w.raw(n.Data)
			} else {
				w.flow(n.Data)
			}
			return
		case html.ElementNode:
			if isIgnoredTag(n.Data) {
				return
			}
			if n.Data == "br" {
				w.newline()
				return
			}
			if n.Data == "pre" {
				pre = true
			}
		}

		block := n.Type == html.ElementNode && isBlockTag(n.Data)
		if block {
			w.newline()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, pre)
		}
		if block {
			w.newline()
		}
	}
	walk(n, false)

	text := blankLines.ReplaceAllString(string(w.buf), "\n\n")
	return strings.TrimSpace(text)
}

// textWriter accumulates innerText output. Flowing text never starts or ends a
// line with a space; raw text is written as-is.
type textWriter struct {
	buf []byte
}

func (w *textWriter) atLineStart() bool {
	return len(w.buf) == 0 || w.buf[len(w.buf)-1] == '\n'
}

func (w *textWriter) endsWithSpace() bool {
	return len(w.buf) > 0 && w.buf[len(w.buf)-1] == ' '
}

func (w *textWriter) flow(s string) {
	s = spaceRun.ReplaceAllString(s, " ")
	if w.atLineStart() || w.endsWithSpace() {
		s = strings.TrimPrefix(s, " ")
	}
	w.buf = append(w.buf, s...)
}

func (w *textWriter) raw(s string) {
	w.buf = append(w.buf, s...)
}

func (w *textWriter) newline() {
	for w.endsWithSpace() {
		w.buf = w.buf[:len(w.buf)-1]
	}
	w.buf = append(w.buf, '\n')
}

// textContent concatenates all descendant text, like DOM textContent.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func isIgnoredTag(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "iframe", "object", "embed", "template":
		return true
	}
	return false
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "div", "li", "ul", "ol", "pre", "blockquote", "table", "tr",
		"h1", "h2", "h3", "h4", "h5", "h6", "hr", "section", "article", "details", "summary":
		return true
	}
	return false
}
