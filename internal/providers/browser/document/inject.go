package document

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
)

// Inject places a resolved resource into the document
func (d *Document) Inject(ctx context.Context, name string, p resource.Payload) error {
	switch p.Type {
	case resource.TypeScript:
		return d.injectScript(ctx, name, p.Content, p.Module)
	case resource.TypeStylesheet:
		return d.injectStylesheet(p.Content)
	case resource.TypeMarkup:
		return d.injectMarkup(p.Content)
	default:
		return &resource.UnknownResourceTypeError{Type: p.Type.String()}
	}
}

// injectScript appends a <script>. Classic scripts execute immediately;
// module scripts wait for RunDeferred.
func (d *Document) injectScript(ctx context.Context, name, content string, module bool) error {
	script := element(atom.Script)
	if module {
		script.Attr = append(script.Attr, html.Attribute{Key: "type", Val: "module"})
	}
	script.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	d.appendToBody(script)

	if module {
		d.mu.Lock()
		d.deferred = append(d.deferred, deferredScript{name: name, content: content})
		d.mu.Unlock()
		d.logger.Debug("module script deferred", zap.String("script", name))
		return nil
	}

	result, err := d.runtime.Execute(ctx, name, content)
	if err != nil {
		return fmt.Errorf("script evaluation: %w", err)
	}
	d.logger.Debug("script executed", zap.String("script", name), zap.Duration("elapsed", result.Duration))
	return nil
}

// injectStylesheet appends a <style> and records its rules as active
func (d *Document) injectStylesheet(content string) error {
	style := element(atom.Style)
	style.AppendChild(&html.Node{Type: html.TextNode, Data: content})

	d.mu.Lock()
	defer d.mu.Unlock()
	d.body.AppendChild(style)
	d.styles = append(d.styles, content)
	return nil
}

// inertAttr marks scripts that arrived inside markup; they never execute
const inertAttr = "data-inert"

// injectMarkup parses content as a fragment inside a new <div>
func (d *Document) injectMarkup(content string) error {
	if d.sanitizer != nil {
		content = d.sanitizer.Sanitize(content)
	}

	container := element(atom.Div)
	nodes, err := html.ParseFragment(strings.NewReader(content), element(atom.Div))
	if err != nil {
		return fmt.Errorf("parse markup: %w", err)
	}
	for _, n := range nodes {
		markInert(n)
		container.AppendChild(n)
	}

	d.appendToBody(container)
	return nil
}

func markInert(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Script {
		setAttr(n, inertAttr, "")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		markInert(c)
	}
}
