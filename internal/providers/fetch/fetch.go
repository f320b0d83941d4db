package fetch

import (
	"bytes"
	"context"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
)

// Fetcher resolves a resource path
type Fetcher interface {
	FetchBytes(ctx context.Context, path string) ([]byte, error)
	FetchText(ctx context.Context, path string) (string, error)
}

// minDetectLen is the shortest input chardet is trusted on
const minDetectLen = 32

func fetchErr(path string, err error) error {
	return &resource.FetchError{Path: path, Err: err}
}

// DecodeText converts fetched bytes to UTF-8. contentType may be empty.
func DecodeText(data []byte, contentType string) (string, error) {
	if rest, ok := bytes.CutPrefix(data, []byte("\xef\xbb\xbf")); ok {
		return string(rest), nil
	}

	label := declaredCharset(contentType)
	if label == "" {
		if utf8.Valid(data) {
			return string(data), nil
		}
		label = DetectCharset(data)
	}
	if isUTF8(label) {
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		// unknown label: fall back to lossy UTF-8
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DetectCharset guesses the charset of data, defaulting to utf-8
func DetectCharset(data []byte) string {
	if len(data) < minDetectLen {
		return "utf-8"
	}
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

func isUTF8(label string) bool {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}
