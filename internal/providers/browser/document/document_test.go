package document

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/providers/browser/sandbox"
)

func newDoc(t *testing.T, opts Options) *Document {
	t.Helper()
	d, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestInjectScriptExecutesInOrder(t *testing.T) {
	d := newDoc(t, Options{})
	ctx := context.Background()

	require.NoError(t, d.Inject(ctx, "lib.js", resource.Payload{Type: resource.TypeScript, Content: "var order = ['lib'];"}))
	require.NoError(t, d.Inject(ctx, "app.js", resource.Payload{Type: resource.TypeScript, Content: "order.push('app');"}))

	assert.Equal(t, []interface{}{"lib", "app"}, d.Global("order"))
	assert.Equal(t, 2, d.Count("body > script"))
}

func TestInjectScriptErrorKeepsNode(t *testing.T) {
	d := newDoc(t, Options{})

	err := d.Inject(context.Background(), "bad.js", resource.Payload{Type: resource.TypeScript, Content: "missing();"})
	assert.Error(t, err)
	assert.Equal(t, 1, d.Count("body > script"))
}

func TestInjectModuleScriptIsDeferred(t *testing.T) {
	d := newDoc(t, Options{})
	ctx := context.Background()

	require.NoError(t, d.Inject(ctx, "mod.js", resource.Payload{
		Type:    resource.TypeScript,
		Content: "var local = 'scoped'; window.moduleRan = (typeof classic !== 'undefined');",
		Module:  true,
	}))
	require.NoError(t, d.Inject(ctx, "classic.js", resource.Payload{Type: resource.TypeScript, Content: "var classic = 1;"}))

	assert.Nil(t, d.Global("moduleRan"), "module must not run at injection time")
	assert.Equal(t, 1, d.PendingModules())

	typ, ok := d.Attr("script[type=module]", "type")
	require.True(t, ok)
	assert.Equal(t, "module", typ)

	require.NoError(t, d.RunDeferred(ctx))
	assert.Equal(t, true, d.Global("moduleRan"), "module runs after classic scripts")
	assert.Nil(t, d.Global("local"))
	assert.Zero(t, d.PendingModules())
}

func TestRunDeferredJoinsErrors(t *testing.T) {
	d := newDoc(t, Options{})
	ctx := context.Background()

	require.NoError(t, d.Inject(ctx, "bad.mjs", resource.Payload{Type: resource.TypeScript, Content: "throw new Error('x')", Module: true}))
	require.NoError(t, d.Inject(ctx, "good.mjs", resource.Payload{Type: resource.TypeScript, Content: "window.good = 1", Module: true}))

	err := d.RunDeferred(ctx)
	assert.Error(t, err)
	assert.Equal(t, int64(1), d.Global("good"), "later modules still run")
}

func TestInjectStylesheet(t *testing.T) {
	d := newDoc(t, Options{})

	css := "canvas { display: block; }"
	require.NoError(t, d.Inject(context.Background(), "main.css", resource.Payload{Type: resource.TypeStylesheet, Content: css}))

	assert.Equal(t, []string{css}, d.Stylesheets())
	assert.Equal(t, css, d.Text("body > style"))
}

func TestInjectMarkupScriptsAreInert(t *testing.T) {
	d := newDoc(t, Options{})

	markup := `<p id="greeting">hello</p><script>window.ran = true;</script>`
	require.NoError(t, d.Inject(context.Background(), "frag.html", resource.Payload{Type: resource.TypeMarkup, Content: markup}))

	assert.Equal(t, "hello", d.Text("body > div > p#greeting"))
	assert.Equal(t, 1, d.Count("body > div > script[data-inert]"))
	assert.Nil(t, d.Global("ran"))
}

func TestInjectMarkupSanitized(t *testing.T) {
	d := newDoc(t, Options{SanitizeMarkup: true})

	markup := `<p onclick="evil()">hi</p><script>window.ran = true;</script>`
	require.NoError(t, d.Inject(context.Background(), "frag.html", resource.Payload{Type: resource.TypeMarkup, Content: markup}))

	assert.Equal(t, 0, d.Count("script"))
	_, hasHandler := d.Attr("p", "onclick")
	assert.False(t, hasHandler)
	assert.Equal(t, "hi", d.Text("body > div > p"))
}

func TestInjectUnknownType(t *testing.T) {
	d := newDoc(t, Options{})

	err := d.Inject(context.Background(), "x", resource.Payload{Type: resource.TypeUnknown, Content: "?"})
	var typeErr *resource.UnknownResourceTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Zero(t, d.Count("body > *"))
}

func TestScriptsSeeDocument(t *testing.T) {
	d := newDoc(t, Options{Title: "Recursive Labs"})
	ctx := context.Background()

	require.NoError(t, d.Inject(ctx, "frag.html", resource.Payload{Type: resource.TypeMarkup, Content: `<canvas id="scene"></canvas>`}))
	require.NoError(t, d.Inject(ctx, "index.js", resource.Payload{
		Type:    resource.TypeScript,
		Content: "document.getElementById('scene').setAttribute('data-ready', document.title);",
	}))

	v, ok := d.Attr("#scene", "data-ready")
	require.True(t, ok)
	assert.Equal(t, "Recursive Labs", v)
}

func TestScriptLookupsMissReturnNull(t *testing.T) {
	d := newDoc(t, Options{})
	ctx := context.Background()

	script := "var missing = [document.querySelector('#nope') === null, " +
		"document.getElementById('nope') === null, " +
		"document.querySelectorAll('canvas').length];"

	assert.NotPanics(t, func() {
		assert.NoError(t, d.Inject(ctx, "lookup.js", resource.Payload{Type: resource.TypeScript, Content: script}))
	})
	assert.Equal(t, []interface{}{true, true, int64(0)}, d.Global("missing"))
}

func TestConsoleCaptured(t *testing.T) {
	d := newDoc(t, Options{})

	require.NoError(t, d.Inject(context.Background(), "log.js", resource.Payload{Type: resource.TypeScript, Content: "console.log('loaded', 1)"}))

	entries := d.Console()
	require.Len(t, entries, 1)
	assert.Equal(t, "loaded 1", entries[0].Message)
	assert.Equal(t, "log.js", entries[0].Source)
}

func TestScriptTimeout(t *testing.T) {
	d := newDoc(t, Options{Script: sandbox.Config{Timeout: 50 * time.Millisecond}})

	err := d.Inject(context.Background(), "spin.js", resource.Payload{Type: resource.TypeScript, Content: "while(true){}"})
	assert.ErrorIs(t, err, sandbox.ErrTimeout)
}

func TestSetFavicon(t *testing.T) {
	d := newDoc(t, Options{})

	require.NoError(t, d.SetFavicon("./recursiveLabsLogo.png"))
	require.NoError(t, d.SetFavicon("./other.png"))

	assert.Equal(t, 1, d.Count("head > link"), "existing icon link is reused")
	href, _ := d.Attr("link[rel*='icon']", "href")
	assert.Equal(t, "./other.png", href)
	rel, _ := d.Attr("head > link", "rel")
	assert.Equal(t, "shortcut icon", rel)
	typ, _ := d.Attr("head > link", "type")
	assert.Equal(t, "image/x-icon", typ)

	assert.Error(t, d.SetFavicon(""))
}

func TestHTML(t *testing.T) {
	d := newDoc(t, Options{Title: "page"})
	require.NoError(t, d.Inject(context.Background(), "s.css", resource.Payload{Type: resource.TypeStylesheet, Content: "p{}"}))

	out, err := d.HTML()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>page</title>")
	assert.Contains(t, out, "<style>p{}</style>")
}
