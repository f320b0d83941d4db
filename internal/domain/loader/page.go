package loader

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
)

// ErrPageLoaded is returned when Load is called more than once
var ErrPageLoaded = errors.New("page already loaded")

// Document is the page a batch is loaded into
type Document interface {
	Injector
	SetFavicon(path string) error
	RunDeferred(ctx context.Context) error
}

// Page drives one page load end to end
type Page struct {
	doc       Document
	sequencer *Sequencer
	logger    *logging.Logger

	once sync.Once
	done chan struct{}
}

// NewPage creates a page whose batch is injected into doc
func NewPage(doc Document, fetcher Fetcher, pool Pool, opts Options) *Page {
	return &Page{
		doc:       doc,
		sequencer: New(fetcher, pool, doc, opts),
		logger:    opts.Logger.Named("page"),
		done:      make(chan struct{}),
	}
}

// Sequencer returns the sequencer loading the page's batch
func (p *Page) Sequencer() *Sequencer {
	return p.sequencer
}

// Done is closed once the page has finished loading
func (p *Page) Done() <-chan struct{} {
	return p.done
}

// Load sets the favicon, runs the batch, then runs deferred module scripts.
// A failing favicon or module script is logged and does not stop the load.
func (p *Page) Load(ctx context.Context, favicon string, batch *resource.Batch) (Report, error) {
	err := ErrPageLoaded
	var report Report

	p.once.Do(func() {
		err = nil
		defer close(p.done)

		if favicon != "" {
			p.setFavicon(favicon)
		}

		p.sequencer.Run(ctx, batch)
		report = p.sequencer.Report()

		if derr := p.doc.RunDeferred(ctx); derr != nil {
			p.logger.Error("deferred module scripts failed", zap.Error(derr))
		}
		p.logger.Info("page loaded", zap.String("batch", string(report.BatchID)))
	})

	return report, err
}

// setFavicon never fails the load: errors and panics are logged
func (p *Page) setFavicon(path string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("failed to set favicon", zap.String("path", path), zap.Any("panic", r))
		}
	}()
	if err := p.doc.SetFavicon(path); err != nil {
		p.logger.Warn("failed to set favicon", zap.String("path", path), zap.Error(err))
	}
}
