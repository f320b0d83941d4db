package resource

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"js", TypeScript, false},
		{"script", TypeScript, false},
		{"CSS", TypeStylesheet, false},
		{"stylesheet", TypeStylesheet, false},
		{"html", TypeMarkup, false},
		{"markup-fragment", TypeMarkup, false},
		{"unknown", TypeUnknown, true},
		{"", TypeUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				var typeErr *UnknownResourceTypeError
				require.ErrorAs(t, err, &typeErr)
				assert.Equal(t, tt.input, typeErr.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		input   string
		want    Scheme
		wantErr bool
	}{
		{"", SchemeNone, false},
		{"none", SchemeNone, false},
		{"brotli", SchemeBrotli, false},
		{"br", SchemeBrotli, false},
		{"gunzip", SchemeGzip, false},
		{"gzip", SchemeGzip, false},
		{"zstd", SchemeZstd, false},
		{"lzma", SchemeNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScheme(tt.input)
			if tt.wantErr {
				var schemeErr *UnknownCompressionSchemeError
				require.ErrorAs(t, err, &schemeErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemeRoundTripsThroughString(t *testing.T) {
	for _, s := range append([]Scheme{SchemeNone}, Schemes...) {
		parsed, err := ParseScheme(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	assert.False(t, SchemeNone.Compressed())
	assert.True(t, SchemeBrotli.Compressed())
}

func TestDescriptorResolveOnce(t *testing.T) {
	d := &Descriptor{Name: "a", Type: TypeScript}

	_, ok := d.Content()
	assert.False(t, ok)
	_, ok = d.Payload()
	assert.False(t, ok, "payload must not exist before resolution")

	require.NoError(t, d.Resolve("first"))
	assert.ErrorIs(t, d.Resolve("second"), ErrAlreadyResolved)

	content, ok := d.Content()
	assert.True(t, ok)
	assert.Equal(t, "first", content)
}

func TestPayloadModuleOnlyForScripts(t *testing.T) {
	script := &Descriptor{Type: TypeScript, Module: true}
	require.NoError(t, script.Resolve("export {}"))
	p, ok := script.Payload()
	require.True(t, ok)
	assert.True(t, p.Module)

	style := &Descriptor{Type: TypeStylesheet, Module: true}
	require.NoError(t, style.Resolve("body{}"))
	p, ok = style.Payload()
	require.True(t, ok)
	assert.False(t, p.Module)
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&FetchError{Path: "a", Err: errors.New("x")}, "fetch"},
		{fmt.Errorf("wrapped: %w", &WorkerStartupError{Scheme: SchemeBrotli}), "worker_startup"},
		{&WorkerTransportError{Scheme: SchemeGzip}, "worker_transport"},
		{&DecompressionError{Scheme: SchemeBrotli, Path: "a.br", Message: "bad input"}, "decompression"},
		{&UnknownResourceTypeError{Type: "x"}, "unknown_type"},
		{&UnknownCompressionSchemeError{Scheme: "x"}, "unknown_scheme"},
		{errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err))
	}
}

func TestDecompressionErrorMessage(t *testing.T) {
	err := &DecompressionError{Scheme: SchemeBrotli, Path: "a.br", Message: "bad input"}
	assert.Equal(t, "brotli decompression failed for a.br: bad input", err.Error())
}

func TestNewBatch(t *testing.T) {
	b := NewBatch(&Descriptor{Name: "a"}, &Descriptor{Name: "b"})
	assert.Equal(t, 2, b.Len())
	assert.NotEmpty(t, b.ID)

	var nilBatch *Batch
	assert.Zero(t, nilBatch.Len())
}
