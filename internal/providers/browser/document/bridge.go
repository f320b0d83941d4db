package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/pageloader/internal/providers/browser/sandbox"
)

// bridge exposes the document to its script runtime
type bridge struct {
	d *Document
}

func (b bridge) QuerySelector(selector string) (sandbox.Element, bool) {
	b.d.mu.RLock()
	defer b.d.mu.RUnlock()

	n := b.d.first(selector)
	if n == nil {
		return nil, false
	}
	return &node{d: b.d, n: n}, true
}

func (b bridge) QuerySelectorAll(selector string) []sandbox.Element {
	b.d.mu.RLock()
	defer b.d.mu.RUnlock()

	var out []sandbox.Element
	b.d.find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &node{d: b.d, n: s.Get(0)})
	})
	return out
}

func (b bridge) Title() string {
	return b.d.Title()
}

// node is a live element handed to scripts
type node struct {
	d *Document
	n *html.Node
}

func (e *node) TagName() string {
	return strings.ToUpper(e.n.Data)
}

func (e *node) ID() string {
	v, _ := e.Attribute("id")
	return v
}

func (e *node) TextContent() string {
	e.d.mu.RLock()
	defer e.d.mu.RUnlock()

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.n)
	return sb.String()
}

func (e *node) Attribute(name string) (string, bool) {
	e.d.mu.RLock()
	defer e.d.mu.RUnlock()

	for _, a := range e.n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (e *node) SetAttribute(name, value string) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	setAttr(e.n, strings.ToLower(name), value)
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}
