package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
)

const yamlManifest = `
favicon: ./logo.png
resources:
  - name: three.min.js
    path: ./three.min.js.br
    type: js
    compression: brotli
  - path: ./assets/index.js
    type: js
    module: true
  - path: ./theme.css.gz
    type: css
    compression: gunzip
`

const tomlManifest = `
favicon = "./logo.png"

[[resources]]
name = "three.min.js"
path = "./three.min.js.br"
type = "js"
compression = "brotli"

[[resources]]
path = "./assets/index.js"
type = "js"
module = true

[[resources]]
path = "./theme.css.gz"
type = "css"
compression = "gunzip"
`

const jsonManifest = `{
  "favicon": "./logo.png",
  "resources": [
    {"name": "three.min.js", "path": "./three.min.js.br", "type": "js", "compression": "brotli"},
    {"path": "./assets/index.js", "type": "js", "module": true},
    {"path": "./theme.css.gz", "type": "css", "compression": "gunzip"}
  ]
}`

func TestParseFormats(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{FormatYAML, yamlManifest},
		{FormatTOML, tomlManifest},
		{FormatJSON, jsonManifest},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			m, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)

			assert.Equal(t, "./logo.png", m.Favicon)
			require.Len(t, m.Resources, 3)

			batch := m.Batch()
			require.Equal(t, 3, batch.Len())
			assert.NotEmpty(t, batch.ID)

			first := batch.Resources[0]
			assert.Equal(t, "three.min.js", first.Name)
			assert.Equal(t, resource.TypeScript, first.Type)
			assert.Equal(t, resource.SchemeBrotli, first.Scheme)
			assert.NoError(t, first.Invalid)

			second := batch.Resources[1]
			assert.Equal(t, "index.js", second.Name, "name defaults to base of path")
			assert.Equal(t, resource.SchemeNone, second.Scheme)
			assert.True(t, second.Module)

			third := batch.Resources[2]
			assert.Equal(t, resource.TypeStylesheet, third.Type)
			assert.Equal(t, resource.SchemeGzip, third.Scheme)
		})
	}
}

func TestInvalidEntriesAreKept(t *testing.T) {
	m := &Manifest{Resources: []Entry{
		{Path: "a.wasm", Type: "wasm"},
		{Path: "b.js.lz", Type: "js", Compression: "lz4"},
		{Path: "c.css", Type: "css"},
	}}

	batch := m.Batch()
	require.Equal(t, 3, batch.Len())

	var typeErr *resource.UnknownResourceTypeError
	assert.ErrorAs(t, batch.Resources[0].Invalid, &typeErr)

	var schemeErr *resource.UnknownCompressionSchemeError
	assert.ErrorAs(t, batch.Resources[1].Invalid, &schemeErr)

	assert.NoError(t, batch.Resources[2].Invalid)
}

func TestEmptyPathRejected(t *testing.T) {
	_, err := Parse([]byte(`{"resources":[{"name":"x","type":"js"}]}`), FormatJSON)
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("resources: [unterminated"), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte("{}"), Format("ini"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.yml")
	require.NoError(t, os.WriteFile(file, []byte(yamlManifest), 0o644))

	m, err := Load(file)
	require.NoError(t, err)
	assert.Len(t, m.Resources, 3)

	_, err = Load(filepath.Join(dir, "page.ini"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Default().Encode(format)
			require.NoError(t, err)

			m, err := Parse(data, format)
			require.NoError(t, err)
			assert.Equal(t, Default(), m)
		})
	}
}

func TestDefault(t *testing.T) {
	m := Default()
	require.NoError(t, m.Validate())

	batch := m.Batch()
	require.Equal(t, 2, batch.Len())
	assert.Equal(t, "three.min.js.br", batch.Resources[0].Name)
	assert.Equal(t, resource.SchemeBrotli, batch.Resources[0].Scheme)
	assert.Equal(t, "index.js", batch.Resources[1].Name)
	assert.Equal(t, resource.SchemeNone, batch.Resources[1].Scheme)
	assert.Equal(t, "./recursiveLabsLogo.png", m.Favicon)
}
