package workers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/monitoring"
)

const utf8BOM = "\uFEFF"

// Options configures a Pool
type Options struct {
	Programs       ProgramSource
	StartupTimeout time.Duration
	Logger         *logging.Logger
	Metrics        *monitoring.Metrics
}

// Pool owns at most one live worker per compression scheme
type Pool struct {
	programs       ProgramSource
	startupTimeout time.Duration
	logger         *logging.Logger
	metrics        *monitoring.Metrics

	mu      sync.Mutex
	workers map[resource.Scheme]*Process
}

// NewPool creates an empty pool. No worker is started until first use.
func NewPool(opts Options) *Pool {
	programs := opts.Programs
	if programs == nil {
		programs = DefaultPrograms
	}
	return &Pool{
		programs:       programs,
		startupTimeout: opts.StartupTimeout,
		logger:         opts.Logger.Named("workers"),
		metrics:        opts.Metrics,
		workers:        make(map[resource.Scheme]*Process),
	}
}

// EnsureWorker returns the live worker for scheme, spawning it if needed
func (p *Pool) EnsureWorker(ctx context.Context, scheme resource.Scheme) (*Process, error) {
	if !scheme.Compressed() {
		return nil, &resource.UnknownCompressionSchemeError{Scheme: scheme.String()}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.workers[scheme]; ok {
		if w.Alive() {
			return w, nil
		}
		p.evictLocked(scheme, w)
	}

	prog, err := p.programs(scheme)
	if err != nil {
		return nil, err
	}

	w, err := Spawn(ctx, prog, SpawnOptions{
		StartupTimeout: p.startupTimeout,
		Logger:         p.logger,
	})
	p.metrics.RecordSpawn(scheme.String(), err)
	if err != nil {
		p.logger.Warn("worker failed to start", zap.Stringer("scheme", scheme), zap.Error(err))
		return nil, &resource.WorkerStartupError{Scheme: scheme, Err: err}
	}

	p.workers[scheme] = w
	p.logger.Debug("worker started",
		zap.Stringer("scheme", scheme),
		zap.String("worker_id", w.ID().String()),
	)
	return w, nil
}

// Decompress sends data to the scheme's worker and returns the decoded text.
// Ownership of data moves to the worker; the caller must not reuse it.
func (p *Pool) Decompress(ctx context.Context, scheme resource.Scheme, path string, data []byte) (string, error) {
	w, err := p.EnsureWorker(ctx, scheme)
	if err != nil {
		return "", err
	}

	start := time.Now()
	reply, err := w.Send(ctx, NewBuffer(data))
	p.metrics.RecordDecompress(scheme.String(), time.Since(start))
	if err != nil {
		// a busy worker is still healthy; only a broken one is replaced
		if !errors.Is(err, ErrBusy) {
			p.mu.Lock()
			p.evictLocked(scheme, w)
			p.mu.Unlock()
		}
		return "", &resource.WorkerTransportError{Scheme: scheme, Err: err}
	}

	if reply.Failed() {
		return "", &resource.DecompressionError{Scheme: scheme, Path: path, Message: reply.Error}
	}
	return DecodeText(reply.Data), nil
}

// ShutdownAll terminates every live worker and empties the registry.
// It is idempotent and never fails.
func (p *Pool) ShutdownAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for scheme, w := range p.workers {
		p.evictLocked(scheme, w)
	}
}

// evictLocked terminates w and removes it if it is still registered
func (p *Pool) evictLocked(scheme resource.Scheme, w *Process) {
	if current, ok := p.workers[scheme]; !ok || current != w {
		return
	}
	delete(p.workers, scheme)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("worker teardown failed", zap.Stringer("scheme", scheme), zap.Any("panic", r))
		}
	}()
	w.Terminate()
	p.metrics.RecordTerminate()
}

// Live returns the number of live workers
func (p *Pool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, w := range p.workers {
		if w.Alive() {
			n++
		}
	}
	return n
}

// LiveFor reports whether scheme has a live worker
func (p *Pool) LiveFor(scheme resource.Scheme) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.workers[scheme]
	return ok && w.Alive()
}

// DecodeText decodes a reply buffer as UTF-8 text. A leading byte order mark
// is dropped and invalid sequences become U+FFFD.
func DecodeText(data []byte) string {
	text := strings.TrimPrefix(string(data), utf8BOM)
	if utf8.ValidString(text) {
		return text
	}
	return strings.ToValidUTF8(text, "\uFFFD")
}
