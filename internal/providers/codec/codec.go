// Package codec holds the decompression algorithms run inside workers.
//
// Decoders are pure: compressed bytes in, decompressed bytes out. They are
// not safe for concurrent use; each worker owns its own instance.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
)

// MaxDecodedSize bounds the output of a single decode
const MaxDecodedSize = 256 << 20

// Decoder decompresses one buffer
type Decoder interface {
	Decode(src []byte) ([]byte, error)
}

// Closer is implemented by decoders holding resources
type Closer interface {
	Close()
}

// Brotli decodes RFC 7932 streams
type Brotli struct{}

// Decode implements Decoder. The brotli reader reports a plain EOF when the
// input ends mid-stream, so completion is checked with a trailing byte: a
// finished stream rejects it as excess input, a truncated one consumes it.
func (Brotli) Decode(src []byte) ([]byte, error) {
	tail := &trailer{src: bytes.NewReader(src)}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(brotli.NewReader(tail), MaxDecodedSize+1))
	if n > MaxDecodedSize {
		return nil, fmt.Errorf("decoded size exceeds %d bytes", MaxDecodedSize)
	}
	switch {
	case err == nil:
		return nil, fmt.Errorf("brotli stream: %w", io.ErrUnexpectedEOF)
	case tail.sent && strings.HasSuffix(err.Error(), "excessive input"):
		return buf.Bytes(), nil
	default:
		return nil, err
	}
}

// trailer yields src followed by a single zero byte
type trailer struct {
	src  io.Reader
	sent bool
}

func (t *trailer) Read(p []byte) (int, error) {
	if t.src != nil {
		n, err := t.src.Read(p)
		if err != io.EOF {
			return n, err
		}
		t.src = nil
		if n > 0 {
			return n, nil
		}
	}
	if t.sent || len(p) == 0 {
		return 0, io.EOF
	}
	t.sent = true
	p[0] = 0
	return 1, nil
}

// Gzip decodes RFC 1952 streams
type Gzip struct{}

// Decode implements Decoder
func (Gzip) Decode(src []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("gzip header: %w", err)
	}
	defer r.Close()
	return readAll(r)
}

// Zstd decodes zstandard frames with a reusable decoder
type Zstd struct {
	dec *zstd.Decoder
}

// NewZstd creates a zstd decoder limited to a single goroutine
func NewZstd() (*Zstd, error) {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(MaxDecodedSize),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Zstd{dec: dec}, nil
}

// Decode implements Decoder
func (z *Zstd) Decode(src []byte) ([]byte, error) {
	out, err := z.dec.DecodeAll(src, nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the decoder
func (z *Zstd) Close() {
	z.dec.Close()
}

// ForScheme returns a fresh decoder for a compressed scheme
func ForScheme(scheme resource.Scheme) (Decoder, error) {
	switch scheme {
	case resource.SchemeBrotli:
		return Brotli{}, nil
	case resource.SchemeGzip:
		return Gzip{}, nil
	case resource.SchemeZstd:
		return NewZstd()
	case resource.SchemeNone:
		return nil, fmt.Errorf("scheme %s needs no decoder", scheme)
	default:
		return nil, &resource.UnknownCompressionSchemeError{Scheme: scheme.String()}
	}
}

// Decode runs the reference algorithm for scheme directly on src
func Decode(scheme resource.Scheme, src []byte) ([]byte, error) {
	dec, err := ForScheme(scheme)
	if err != nil {
		return nil, err
	}
	if c, ok := dec.(Closer); ok {
		defer c.Close()
	}
	return dec.Decode(src)
}

func readAll(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxDecodedSize+1))
	if err != nil {
		return nil, err
	}
	if n > MaxDecodedSize {
		return nil, fmt.Errorf("decoded size exceeds %d bytes", MaxDecodedSize)
	}
	return buf.Bytes(), nil
}
