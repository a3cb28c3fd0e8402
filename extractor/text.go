package extractor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements break lines the way a browser's innerText does.
var blockElements = map[atom.Atom]bool{
	atom.Div: true, atom.P: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.Blockquote: true, atom.Section: true, atom.Article: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Tr: true,
}

// visibleText renders the nodes approximately as innerText would: <br> and
// block elements become line breaks, emoji images contribute their alt
// text, scripts and styles are skipped.
func visibleText(nodes []*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		renderText(&b, n)
	}
	return tidyLines(b.String())
}

func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			b.WriteByte('\n')
			return
		case atom.Img:
			b.WriteString(attr(n, "alt"))
			return
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	block := blockElements[n.DataAtom]
	if block {
		lineBreak(b)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
	if block {
		lineBreak(b)
	}
}

// lineBreak ends the current line unless it is already ended.
func lineBreak(b *strings.Builder) {
	s := b.String()
	if s != "" && s[len(s)-1] != '\n' {
		b.WriteByte('\n')
	}
}

// tidyLines trims every line, drops leading and trailing blank lines and
// collapses runs of blank lines to a single paragraph break.
func tidyLines(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
