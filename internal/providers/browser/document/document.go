package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pageloader/internal/providers/browser/sandbox"
)

const skeleton = "<!DOCTYPE html><html><head></head><body></body></html>"

// Options configures a Document
type Options struct {
	Title          string
	Script         sandbox.Config
	SanitizeMarkup bool
	Logger         *logging.Logger
}

// Document is a live HTML document
type Document struct {
	mu   sync.RWMutex
	root *html.Node
	head *html.Node
	body *html.Node

	styles   []string
	deferred []deferredScript

	runtime   *sandbox.Runtime
	sanitizer *bluemonday.Policy
	logger    *logging.Logger

	consoleMu sync.Mutex
	console   []sandbox.LogEntry
}

type deferredScript struct {
	name    string
	content string
}

// New creates an empty document with its script runtime
func New(opts Options) (*Document, error) {
	root, err := html.Parse(strings.NewReader(skeleton))
	if err != nil {
		return nil, fmt.Errorf("parse skeleton: %w", err)
	}

	d := &Document{
		root:   root,
		logger: opts.Logger.Named("document"),
	}
	sel := goquery.NewDocumentFromNode(root)
	d.head = sel.Find("head").Get(0)
	d.body = sel.Find("body").Get(0)

	if opts.Title != "" {
		title := element(atom.Title)
		title.AppendChild(&html.Node{Type: html.TextNode, Data: opts.Title})
		d.head.AppendChild(title)
	}
	if opts.SanitizeMarkup {
		d.sanitizer = bluemonday.UGCPolicy()
	}

	scriptCfg := opts.Script
	if scriptCfg.Timeout <= 0 {
		scriptCfg = sandbox.DefaultConfig()
	}
	scriptCfg.EnableConsole = true

	rt, err := sandbox.New(scriptCfg)
	if err != nil {
		return nil, fmt.Errorf("script runtime: %w", err)
	}
	rt.SetConsoleSink(d.recordConsole)
	if err := rt.Bind(bridge{d}); err != nil {
		return nil, fmt.Errorf("bind document: %w", err)
	}
	d.runtime = rt

	return d, nil
}

// Close releases the script runtime
func (d *Document) Close() error {
	return d.runtime.Close()
}

// HTML renders the document
func (d *Document) HTML() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Count returns the number of nodes matching selector
func (d *Document) Count(selector string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.find(selector).Length()
}

// Text returns the combined text of the nodes matching selector
func (d *Document) Text(selector string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.find(selector).Text()
}

// Attr returns an attribute of the first node matching selector
func (d *Document) Attr(selector, name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.find(selector).First().Attr(name)
}

// Title returns the document title
func (d *Document) Title() string {
	return strings.TrimSpace(d.Text("head > title"))
}

// Stylesheets returns the active style rules in injection order
func (d *Document) Stylesheets() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.styles...)
}

// Console returns every console entry scripts have produced
func (d *Document) Console() []sandbox.LogEntry {
	d.consoleMu.Lock()
	defer d.consoleMu.Unlock()
	return append([]sandbox.LogEntry(nil), d.console...)
}

// Global returns a global from the script runtime
func (d *Document) Global(name string) interface{} {
	return d.runtime.Get(name)
}

// PendingModules returns the number of deferred module scripts
func (d *Document) PendingModules() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.deferred)
}

// RunDeferred executes queued module scripts in injection order. Every
// script runs; failures are logged and joined into the returned error.
func (d *Document) RunDeferred(ctx context.Context) error {
	d.mu.Lock()
	queue := d.deferred
	d.deferred = nil
	d.mu.Unlock()

	var errs []error
	for _, script := range queue {
		if _, err := d.runtime.ExecuteModule(ctx, script.name, script.content); err != nil {
			d.logger.Error("module script failed", zap.String("script", script.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		d.logger.Debug("module script executed", zap.String("script", script.name))
	}
	return errors.Join(errs...)
}

func (d *Document) find(selector string) *goquery.Selection {
	return goquery.NewDocumentFromNode(d.root).Find(selector)
}

// first returns the first node matching selector, nil when nothing matches
func (d *Document) first(selector string) *html.Node {
	sel := d.find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

func (d *Document) recordConsole(entry sandbox.LogEntry) {
	d.consoleMu.Lock()
	d.console = append(d.console, entry)
	d.consoleMu.Unlock()

	fields := []zap.Field{zap.String("script", entry.Source), zap.String("level", entry.Level)}
	switch entry.Level {
	case "error":
		d.logger.Error(entry.Message, fields...)
	case "warn":
		d.logger.Warn(entry.Message, fields...)
	default:
		d.logger.Debug(entry.Message, fields...)
	}
}

// appendToBody attaches n as the last child of <body>
func (d *Document) appendToBody(n *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.body.AppendChild(n)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}
