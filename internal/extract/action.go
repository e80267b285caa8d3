package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// ActionText normalises user-supplied action text. Markup from rich-text
// editors is reduced to its visible text; plain text only has its
// whitespace collapsed.
func ActionText(raw string) string {
	if !looksLikeHTML(raw) {
		return collapseSpace(raw)
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return collapseSpace(raw)
	}
	return collapseSpace(visibleText(doc))
}

// SplitAction splits a one-line action of the form "Title | summary" or
// "Title: summary". A line without a separator is all title.
func SplitAction(line string) (title, summary string) {
	line = strings.TrimSpace(line)
	if t, s, ok := strings.Cut(line, "|"); ok {
		return strings.TrimSpace(t), strings.TrimSpace(s)
	}
	if t, s, ok := strings.Cut(line, ": "); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t), strings.TrimSpace(s)
	}
	return line, ""
}

// visibleText walks the parsed document, skipping scripts and styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			case "br", "p", "div", "li":
				buf.WriteString(" ")
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

func looksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	if i < 0 || i+1 >= len(s) {
		return false
	}
	next := s[i+1]
	return (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z') || next == '/' || next == '!'
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
