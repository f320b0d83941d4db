package codec

import (
	"bytes"
	"fmt"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
)

// Encode compresses src with the scheme's reference encoder.
// It produces the assets the loader later decodes.
func Encode(scheme resource.Scheme, src []byte) ([]byte, error) {
	var buf bytes.Buffer

	switch scheme {
	case resource.SchemeBrotli:
		w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
		if _, err := w.Write(src); err != nil {
			return nil, fmt.Errorf("failed to compress data: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to finalize compression: %w", err)
		}
	case resource.SchemeGzip:
		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(src); err != nil {
			return nil, fmt.Errorf("failed to compress data: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to finalize compression: %w", err)
		}
	case resource.SchemeZstd:
		w, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, err
		}
		defer w.Close()
		return w.EncodeAll(src, nil), nil
	case resource.SchemeNone:
		return append([]byte(nil), src...), nil
	default:
		return nil, &resource.UnknownCompressionSchemeError{Scheme: scheme.String()}
	}

	return buf.Bytes(), nil
}
