package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
)

// ErrOutsideRoot is returned for paths that escape the asset root
var ErrOutsideRoot = errors.New("path escapes asset root")

// FileFetcher reads resources from a directory
type FileFetcher struct {
	root   string
	logger *logging.Logger
}

// NewFileFetcher creates a fetcher rooted at root
func NewFileFetcher(root string, logger *logging.Logger) (*FileFetcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("asset root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory", abs)
	}
	return &FileFetcher{root: abs, logger: logger.Named("fetch")}, nil
}

// Root returns the absolute asset root
func (f *FileFetcher) Root() string {
	return f.root
}

// resolve maps a declared path onto the root
func (f *FileFetcher) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(path, "file://")))
	if !filepath.IsAbs(clean) {
		clean = filepath.Join(f.root, clean)
	}
	rel, err := filepath.Rel(f.root, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return clean, nil
}

// FetchBytes implements Fetcher
func (f *FileFetcher) FetchBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchErr(path, err)
	}
	full, err := f.resolve(path)
	if err != nil {
		return nil, fetchErr(path, err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fetchErr(path, err)
	}
	f.logger.Debug("read file", zap.String("path", path), zap.Int("bytes", len(data)))
	return data, nil
}

// FetchText implements Fetcher
func (f *FileFetcher) FetchText(ctx context.Context, path string) (string, error) {
	data, err := f.FetchBytes(ctx, path)
	if err != nil {
		return "", err
	}
	text, err := DecodeText(data, "")
	if err != nil {
		return "", fetchErr(path, err)
	}
	return text, nil
}
