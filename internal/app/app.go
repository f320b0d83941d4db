package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/config"
	"github.com/GriffinCanCode/pageloader/internal/domain/loader"
	"github.com/GriffinCanCode/pageloader/internal/domain/manifest"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/pageloader/internal/providers/browser/document"
	"github.com/GriffinCanCode/pageloader/internal/providers/browser/sandbox"
	"github.com/GriffinCanCode/pageloader/internal/providers/fetch"
	"github.com/GriffinCanCode/pageloader/internal/workers"
)

// Result is the outcome of one page load
type Result struct {
	HTML     string
	Report   loader.Report
	Console  []sandbox.LogEntry
	LoadedAt time.Time
}

// App runs page loads
type App struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	fetcher fetch.Fetcher
}

// New builds an App from configuration. A configured base URL routes every
// path over HTTP; otherwise relative paths are read from the asset root.
func New(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) (*App, error) {
	httpFetcher, err := fetch.NewHTTPFetcher(fetch.HTTPConfig{
		BaseURL:   cfg.Loader.BaseURL,
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
	}, logger)
	if err != nil {
		return nil, err
	}

	router := &fetch.Router{HTTP: httpFetcher}
	if cfg.Loader.BaseURL == "" {
		files, err := fetch.NewFileFetcher(cfg.Loader.Root, logger)
		if err != nil {
			return nil, err
		}
		router.Fallback = files
	}

	return NewWithFetcher(cfg, logger, metrics, router), nil
}

// NewWithFetcher builds an App around an existing fetcher
func NewWithFetcher(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics, f fetch.Fetcher) *App {
	return &App{
		cfg:     cfg,
		logger:  logger.Named("app"),
		metrics: metrics,
		fetcher: f,
	}
}

// Manifest returns the configured manifest, or the built-in batch when none
// is configured
func (a *App) Manifest() (*manifest.Manifest, error) {
	if a.cfg.Loader.Manifest == "" {
		return manifest.Default(), nil
	}
	m, err := manifest.Load(a.cfg.Loader.Manifest)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", a.cfg.Loader.Manifest, err)
	}
	return m, nil
}

// Load runs m against a fresh document and returns the rendered page.
// Resource failures are reported in Result.Report, not as an error.
func (a *App) Load(ctx context.Context, m *manifest.Manifest) (*Result, error) {
	doc, err := document.New(document.Options{
		Script: sandbox.Config{
			Timeout:       a.cfg.Document.ScriptTimeout,
			EnableConsole: true,
		},
		SanitizeMarkup: a.cfg.Document.SanitizeMarkup,
		Logger:         a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	defer doc.Close()

	pool := workers.NewPool(workers.Options{
		StartupTimeout: a.cfg.Workers.StartupTimeout,
		Logger:         a.logger,
		Metrics:        a.metrics,
	})
	page := loader.NewPage(doc, a.fetcher, pool, loader.Options{
		Logger:  a.logger,
		Metrics: a.metrics,
	})

	batch := m.Batch()
	a.logger.Info("loading page",
		zap.String("batch", string(batch.ID)),
		zap.Int("resources", batch.Len()),
	)

	report, err := page.Load(ctx, m.Favicon, batch)
	if err != nil {
		return nil, err
	}

	html, err := doc.HTML()
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	return &Result{
		HTML:     html,
		Report:   report,
		Console:  doc.Console(),
		LoadedAt: time.Now(),
	}, nil
}
