package loader

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/monitoring"
)

var errNilDescriptor = errors.New("nil resource descriptor")

// Fetcher retrieves resource content
type Fetcher interface {
	FetchBytes(ctx context.Context, path string) ([]byte, error)
	FetchText(ctx context.Context, path string) (string, error)
}

// Pool decompresses through per-scheme workers
type Pool interface {
	Decompress(ctx context.Context, scheme resource.Scheme, path string, data []byte) (string, error)
	ShutdownAll()
}

// Injector places resolved content into the document
type Injector interface {
	Inject(ctx context.Context, name string, p resource.Payload) error
}

// Options configures a Sequencer
type Options struct {
	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Sequencer loads the resources of a batch strictly in order
type Sequencer struct {
	fetcher  Fetcher
	pool     Pool
	injector Injector
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	mu        sync.Mutex
	listeners []func(Report)
	last      Report
}

// New creates a sequencer
func New(fetcher Fetcher, pool Pool, injector Injector, opts Options) *Sequencer {
	return &Sequencer{
		fetcher:  fetcher,
		pool:     pool,
		injector: injector,
		logger:   opts.Logger.Named("loader"),
		metrics:  opts.Metrics,
	}
}

// OnComplete registers a listener called once at the end of every Run,
// after the worker pool has been shut down
func (s *Sequencer) OnComplete(fn func(Report)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Report returns the report of the most recent Run
func (s *Sequencer) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Run loads every resource of batch. It never fails as a whole: each
// resource failure is logged and the next resource is started.
func (s *Sequencer) Run(ctx context.Context, batch *resource.Batch) {
	start := time.Now()
	report := Report{Outcomes: make([]Outcome, 0, batch.Len())}
	if batch != nil {
		report.BatchID = batch.ID
	}
	logger := s.logger.With(zap.String("batch", string(report.BatchID)))

	defer func() {
		s.shutdown(logger)
		report.Duration = time.Since(start)
		s.metrics.RecordBatch(report.Duration)
		logger.Info("batch complete",
			zap.Int("loaded", report.Loaded()),
			zap.Int("failed", len(report.Failed())),
			zap.Duration("elapsed", report.Duration))
		s.complete(report)
	}()

	if batch == nil {
		return
	}
	for _, d := range batch.Resources {
		outcome := s.load(ctx, d)
		report.Outcomes = append(report.Outcomes, outcome)
		s.metrics.RecordResource(outcome.Type.String(), resource.Kind(outcome.Err))

		if outcome.Err != nil {
			logger.Error("failed to load "+outcome.Name,
				zap.String("resource", outcome.Name),
				zap.String("path", outcome.Path),
				zap.String("kind", resource.Kind(outcome.Err)),
				zap.Error(outcome.Err))
			continue
		}
		logger.Info("loaded "+outcome.Name,
			zap.String("resource", outcome.Name),
			zap.String("scheme", outcome.Scheme.String()),
			zap.Duration("elapsed", outcome.Duration))
	}
}

// load resolves and injects one descriptor, converting panics to errors
func (s *Sequencer) load(ctx context.Context, d *resource.Descriptor) (out Outcome) {
	if d == nil {
		return Outcome{Name: "<nil>", Err: errNilDescriptor}
	}

	start := time.Now()
	out = Outcome{Name: d.Name, Path: d.Path, Type: d.Type, Scheme: d.Scheme}
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic loading %s: %v", d.Name, r)
		}
		out.Duration = time.Since(start)
	}()

	out.Err = s.resolveAndInject(ctx, d)
	return out
}

func (s *Sequencer) resolveAndInject(ctx context.Context, d *resource.Descriptor) error {
	if d.Invalid != nil {
		return d.Invalid
	}

	content, err := s.resolve(ctx, d)
	if err != nil {
		return err
	}
	if err := d.Resolve(content); err != nil {
		return err
	}

	payload, _ := d.Payload()
	return s.injector.Inject(ctx, d.Name, payload)
}

func (s *Sequencer) resolve(ctx context.Context, d *resource.Descriptor) (string, error) {
	switch d.Scheme {
	case resource.SchemeNone:
		return s.fetcher.FetchText(ctx, d.Path)
	case resource.SchemeBrotli, resource.SchemeGzip, resource.SchemeZstd:
		data, err := s.fetcher.FetchBytes(ctx, d.Path)
		if err != nil {
			return "", err
		}
		return s.pool.Decompress(ctx, d.Scheme, d.Path, data)
	default:
		return "", &resource.UnknownCompressionSchemeError{Scheme: d.Scheme.String()}
	}
}

// shutdown tears the pool down. Teardown failures never reach the caller.
func (s *Sequencer) shutdown(logger *logging.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("worker pool teardown panicked", zap.Any("panic", r))
		}
	}()
	s.pool.ShutdownAll()
}

func (s *Sequencer) complete(report Report) {
	s.mu.Lock()
	s.last = report
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		s.notify(fn, report)
	}
}

func (s *Sequencer) notify(fn func(Report), report Report) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("completion listener panicked", zap.Any("panic", r))
		}
	}()
	fn(report)
}
