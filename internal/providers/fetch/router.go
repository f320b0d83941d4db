package fetch

import (
	"context"
	"errors"
	"strings"
)

var errNoFetcher = errors.New("no fetcher configured for path")

// Router sends absolute http(s) paths to an HTTP fetcher and the rest to a
// fallback fetcher
type Router struct {
	HTTP     Fetcher
	Fallback Fetcher
}

func (r *Router) pick(path string) Fetcher {
	lower := strings.ToLower(path)
	if r.HTTP != nil && (strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")) {
		return r.HTTP
	}
	if r.Fallback != nil {
		return r.Fallback
	}
	return r.HTTP
}

// FetchBytes implements Fetcher
func (r *Router) FetchBytes(ctx context.Context, path string) ([]byte, error) {
	f := r.pick(path)
	if f == nil {
		return nil, fetchErr(path, errNoFetcher)
	}
	return f.FetchBytes(ctx, path)
}

// FetchText implements Fetcher
func (r *Router) FetchText(ctx context.Context, path string) (string, error) {
	f := r.pick(path)
	if f == nil {
		return "", fetchErr(path, errNoFetcher)
	}
	return f.FetchText(ctx, path)
}
