package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/providers/browser/document"
	"github.com/GriffinCanCode/pageloader/internal/workers"
)

func TestPageLoad(t *testing.T) {
	doc, err := document.New(document.Options{Title: "Recursive Labs"})
	require.NoError(t, err)
	defer doc.Close()

	rec := &recorder{}
	fetcher := &fakeFetcher{rec: rec, files: map[string][]byte{
		"three.min.js.br": encode(t, resource.SchemeBrotli, threeJS),
		"index.js":        []byte("window.order = [THREE.REVISION];"),
		"app.mjs":         []byte("window.order.push('module');"),
		"theme.css.zst":   encode(t, resource.SchemeZstd, "canvas { width: 100%; }"),
		"banner.html":     []byte(`<h1 id="banner">hi</h1><script>window.inert = false;</script>`),
	}}
	pool := workers.NewPool(workers.Options{})
	page := NewPage(doc, fetcher, pool, Options{})

	app := script("app.mjs", "app.mjs", resource.SchemeNone)
	app.Module = true
	batch := resource.NewBatch(
		script("three.min.js", "three.min.js.br", resource.SchemeBrotli),
		app,
		script("index.js", "index.js", resource.SchemeNone),
		&resource.Descriptor{Name: "theme", Path: "theme.css.zst", Type: resource.TypeStylesheet, Scheme: resource.SchemeZstd},
		&resource.Descriptor{Name: "banner", Path: "banner.html", Type: resource.TypeMarkup},
		&resource.Descriptor{Name: "mystery", Path: "banner.html", Type: resource.TypeUnknown},
	)

	report, err := page.Load(context.Background(), "./recursiveLabsLogo.png", batch)
	require.NoError(t, err)

	select {
	case <-page.Done():
	default:
		t.Fatal("page not marked done")
	}

	assert.Equal(t, 5, report.Loaded())
	require.Len(t, report.Failed(), 1)
	var typeErr *resource.UnknownResourceTypeError
	assert.ErrorAs(t, report.Failed()[0].Err, &typeErr)

	assert.Equal(t, []interface{}{"160", "module"}, doc.Global("order"), "module scripts run after the batch")
	assert.Nil(t, doc.Global("inert"))
	assert.Equal(t, []string{"canvas { width: 100%; }"}, doc.Stylesheets())
	assert.Equal(t, "hi", doc.Text("#banner"))

	href, ok := doc.Attr("link[rel*='icon']", "href")
	require.True(t, ok)
	assert.Equal(t, "./recursiveLabsLogo.png", href)

	assert.Zero(t, pool.Live())
}

func TestPageLoadsOnce(t *testing.T) {
	doc := &fakeDocument{fakeInjector: newFakeInjector(&recorder{})}
	page := NewPage(doc, &fakeFetcher{rec: &recorder{}}, workers.NewPool(workers.Options{}), Options{})

	_, err := page.Load(context.Background(), "", resource.NewBatch())
	require.NoError(t, err)

	_, err = page.Load(context.Background(), "", resource.NewBatch())
	assert.ErrorIs(t, err, ErrPageLoaded)
	assert.Equal(t, 1, doc.deferredRuns)
	assert.Empty(t, doc.favicon, "empty favicon is skipped")
}

func TestPageFaviconAndModuleFailuresAreLogged(t *testing.T) {
	doc := &fakeDocument{
		fakeInjector: newFakeInjector(&recorder{}),
		faviconErr:   errors.New("no head"),
		deferredErr:  errors.New("module threw"),
	}
	page := NewPage(doc, &fakeFetcher{rec: &recorder{}}, workers.NewPool(workers.Options{}), Options{})

	report, err := page.Load(context.Background(), "./icon.png", resource.NewBatch())
	require.NoError(t, err)
	assert.Empty(t, report.Failed())
	assert.Equal(t, "./icon.png", doc.favicon)
	assert.Equal(t, 1, doc.deferredRuns)
}

type fakeDocument struct {
	*fakeInjector
	favicon      string
	faviconErr   error
	faviconPanic bool
	deferredErr  error
	deferredRuns int
}

func (d *fakeDocument) SetFavicon(path string) error {
	d.favicon = path
	if d.faviconPanic {
		panic("favicon lookup failed")
	}
	return d.faviconErr
}

func (d *fakeDocument) RunDeferred(context.Context) error {
	d.deferredRuns++
	return d.deferredErr
}

func TestPageLoadOnFreshDocument(t *testing.T) {
	doc, err := document.New(document.Options{})
	require.NoError(t, err)
	defer doc.Close()

	fetcher := &fakeFetcher{rec: &recorder{}, files: map[string][]byte{
		"index.js": []byte("var ready = document.querySelector('#scene') === null;"),
	}}
	page := NewPage(doc, fetcher, workers.NewPool(workers.Options{}), Options{})

	report, err := page.Load(context.Background(), "./recursiveLabsLogo.png",
		resource.NewBatch(script("index.js", "index.js", resource.SchemeNone)))
	require.NoError(t, err)

	select {
	case <-page.Done():
	default:
		t.Fatal("page not marked done")
	}
	assert.Equal(t, 1, report.Loaded())
	assert.Equal(t, true, doc.Global("ready"))
	assert.Equal(t, 1, doc.Count("head > link[rel='shortcut icon']"))
}

func TestPageFaviconPanicIsContained(t *testing.T) {
	doc := &fakeDocument{fakeInjector: newFakeInjector(&recorder{}), faviconPanic: true}
	fetcher := &fakeFetcher{rec: &recorder{}, files: map[string][]byte{"index.js": []byte("1")}}
	page := NewPage(doc, fetcher, workers.NewPool(workers.Options{}), Options{})

	var report Report
	require.NotPanics(t, func() {
		report, _ = page.Load(context.Background(), "./icon.png",
			resource.NewBatch(script("index.js", "index.js", resource.SchemeNone)))
	})

	<-page.Done()
	assert.Equal(t, 1, report.Loaded())
	assert.Equal(t, 1, doc.deferredRuns)
}
