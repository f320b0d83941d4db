package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
)

func writeAsset(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o644))
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "index.js", []byte("console.log('hi');"))
	writeAsset(t, dir, "lib/three.min.js.br", []byte{0x1b, 0x02, 0x00})

	f, err := NewFileFetcher(dir, logging.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	text, err := f.FetchText(ctx, "./index.js")
	require.NoError(t, err)
	assert.Equal(t, "console.log('hi');", text)

	data, err := f.FetchBytes(ctx, "lib/three.min.js.br")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1b, 0x02, 0x00}, data)
}

func TestFileFetcherErrors(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFileFetcher(dir, logging.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
	}{
		{"missing", "nope.js"},
		{"escapes root", "../etc/passwd"},
		{"absolute outside root", "/definitely/not/here.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.FetchText(context.Background(), tt.path)
			var fetchErr *resource.FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, tt.path, fetchErr.Path)
		})
	}
}

func TestNewFileFetcherRejectsFile(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "file.txt", []byte("x"))

	_, err := NewFileFetcher(filepath.Join(dir, "file.txt"), nil)
	assert.Error(t, err)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/site/index.js":
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			w.Write([]byte("let x = 1;"))
		case "/site/latin.css":
			w.Header().Set("Content-Type", "text/css; charset=iso-8859-1")
			w.Write([]byte("/* caf\xe9 */"))
		case "/site/a.br":
			w.Write([]byte{1, 2, 3})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(HTTPConfig{BaseURL: srv.URL + "/site"}, logging.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	text, err := f.FetchText(ctx, "./index.js")
	require.NoError(t, err)
	assert.Equal(t, "let x = 1;", text)

	text, err = f.FetchText(ctx, "latin.css")
	require.NoError(t, err)
	assert.Equal(t, "/* café */", text)

	data, err := f.FetchBytes(ctx, srv.URL+"/site/a.br")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = f.FetchText(ctx, "missing.js")
	var fetchErr *resource.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPFetcherRelativeWithoutBase(t *testing.T) {
	f, err := NewHTTPFetcher(HTTPConfig{}, nil)
	require.NoError(t, err)

	_, err = f.FetchBytes(context.Background(), "index.js")
	var fetchErr *resource.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

type stubFetcher struct{ name string }

func (s stubFetcher) FetchBytes(context.Context, string) ([]byte, error) { return []byte(s.name), nil }
func (s stubFetcher) FetchText(context.Context, string) (string, error)  { return s.name, nil }

func TestRouter(t *testing.T) {
	r := &Router{HTTP: stubFetcher{"http"}, Fallback: stubFetcher{"file"}}
	ctx := context.Background()

	tests := []struct {
		path string
		want string
	}{
		{"https://cdn.example.com/three.min.js.br", "http"},
		{"HTTP://example.com/a.js", "http"},
		{"./index.js", "file"},
		{"file:///srv/index.js", "file"},
	}

	for _, tt := range tests {
		got, err := r.FetchText(ctx, tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.path)
	}

	empty := &Router{}
	_, err := empty.FetchBytes(ctx, "a.js")
	var fetchErr *resource.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		want        string
	}{
		{"utf8", []byte("héllo"), "", "héllo"},
		{"bom", []byte("\xef\xbb\xbfbody{}"), "", "body{}"},
		{"declared latin1", []byte("caf\xe9"), "text/plain; charset=ISO-8859-1", "café"},
		{"declared utf8 invalid", []byte("a\xffb"), "text/plain; charset=utf-8", "a�b"},
		{"short invalid undeclared", []byte("a\xffb"), "", "a�b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.data, tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
