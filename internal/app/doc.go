// Package app wires configuration, fetchers, workers and a fresh document
// into a single page load.
//
// Each Load builds its own document and worker pool, so loads never share
// script globals or workers. The fetcher is shared across loads.
//
// Example Usage:
//
//	a, err := app.New(cfg, logger, metrics)
//	if err != nil {
//	    return err
//	}
//	m, err := a.Manifest()
//	if err != nil {
//	    return err
//	}
//	result, err := a.Load(ctx, m)
package app
