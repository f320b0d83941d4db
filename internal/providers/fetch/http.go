package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
)

// HTTPConfig configures an HTTPFetcher
type HTTPConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// HTTPFetcher fetches resources over HTTP with resty
type HTTPFetcher struct {
	client *resty.Client
	base   *url.URL
	logger *logging.Logger
}

// NewHTTPFetcher creates an HTTP fetcher. Retries are disabled: a failed
// fetch fails the resource.
func NewHTTPFetcher(cfg HTTPConfig, logger *logging.Logger) (*HTTPFetcher, error) {
	f := &HTTPFetcher{logger: logger.Named("fetch")}

	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		f.base = base
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "pageloader/1.0"
	}

	f.client = resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "*/*")

	return f, nil
}

// Client exposes the underlying resty client, e.g. to install a transport
func (f *HTTPFetcher) Client() *resty.Client {
	return f.client
}

// URL resolves a declared path against the base URL
func (f *HTTPFetcher) URL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if f.base == nil {
		return "", fmt.Errorf("relative path %q without base URL", path)
	}
	return f.base.ResolveReference(ref).String(), nil
}

func (f *HTTPFetcher) get(ctx context.Context, path string) (*resty.Response, error) {
	target, err := f.URL(path)
	if err != nil {
		return nil, fetchErr(path, err)
	}

	resp, err := f.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, fetchErr(path, fmt.Errorf("request failed: %w", err))
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, fetchErr(path, fmt.Errorf("HTTP %d: %s (url: %s)", status, resp.Status(), target))
	}

	f.logger.Debug("fetched",
		zap.String("url", target),
		zap.Int("status", status),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("elapsed", resp.Time()),
	)
	return resp, nil
}

// FetchBytes implements Fetcher
func (f *HTTPFetcher) FetchBytes(ctx context.Context, path string) ([]byte, error) {
	resp, err := f.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// FetchText implements Fetcher
func (f *HTTPFetcher) FetchText(ctx context.Context, path string) (string, error) {
	resp, err := f.get(ctx, path)
	if err != nil {
		return "", err
	}
	text, err := DecodeText(resp.Body(), resp.Header().Get("Content-Type"))
	if err != nil {
		return "", fetchErr(path, err)
	}
	return text, nil
}
