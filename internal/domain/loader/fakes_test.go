package loader

import (
	"context"
	"errors"
	"sync"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/workers"
)

// recorder collects the order of collaborator calls
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

var errNotFound = errors.New("not found")

type fakeFetcher struct {
	rec   *recorder
	files map[string][]byte
}

func (f *fakeFetcher) lookup(path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, &resource.FetchError{Path: path, Err: errNotFound}
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeFetcher) FetchBytes(_ context.Context, path string) ([]byte, error) {
	f.rec.add("fetch-bytes:" + path)
	return f.lookup(path)
}

func (f *fakeFetcher) FetchText(_ context.Context, path string) (string, error) {
	f.rec.add("fetch-text:" + path)
	data, err := f.lookup(path)
	return string(data), err
}

type fakeInjector struct {
	rec      *recorder
	mu       sync.Mutex
	payloads map[string]resource.Payload
	fail     map[string]error
	panics   map[string]bool
}

func newFakeInjector(rec *recorder) *fakeInjector {
	return &fakeInjector{
		rec:      rec,
		payloads: make(map[string]resource.Payload),
		fail:     make(map[string]error),
		panics:   make(map[string]bool),
	}
}

func (f *fakeInjector) Inject(_ context.Context, name string, p resource.Payload) error {
	f.rec.add("inject:" + name)
	if f.panics[name] {
		panic("injector exploded")
	}
	if err := f.fail[name]; err != nil {
		return err
	}
	f.mu.Lock()
	f.payloads[name] = p
	f.mu.Unlock()
	return nil
}

func (f *fakeInjector) payload(name string) (resource.Payload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payloads[name]
	return p, ok
}

// observedPool wraps a real pool, recording calls and the peak number of
// live workers per scheme
type observedPool struct {
	*workers.Pool
	rec *recorder

	mu      sync.Mutex
	peak    int
	spawned map[resource.Scheme]int
}

func newObservedPool(rec *recorder, programs workers.ProgramSource) *observedPool {
	p := &observedPool{rec: rec, spawned: make(map[resource.Scheme]int)}
	if programs == nil {
		programs = workers.DefaultPrograms
	}
	p.Pool = workers.NewPool(workers.Options{
		Programs: func(s resource.Scheme) (workers.Program, error) {
			p.mu.Lock()
			p.spawned[s]++
			p.mu.Unlock()
			rec.add("spawn:" + s.String())
			return programs(s)
		},
	})
	return p
}

func (p *observedPool) Decompress(ctx context.Context, scheme resource.Scheme, path string, data []byte) (string, error) {
	p.rec.add("decompress:" + path)
	text, err := p.Pool.Decompress(ctx, scheme, path, data)

	p.mu.Lock()
	if live := p.Pool.Live(); live > p.peak {
		p.peak = live
	}
	p.mu.Unlock()
	return text, err
}

func (p *observedPool) ShutdownAll() {
	p.rec.add("shutdown")
	p.Pool.ShutdownAll()
}

func (p *observedPool) spawns(s resource.Scheme) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spawned[s]
}

func (p *observedPool) peakLive() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

// panickingPool fails teardown
type panickingPool struct {
	Pool
}

func (panickingPool) ShutdownAll() {
	panic("teardown exploded")
}

// failingPrograms builds workers whose handler always rejects its input
func failingPrograms(message string) workers.ProgramSource {
	return func(s resource.Scheme) (workers.Program, error) {
		return workers.Program{
			Name: s.String() + "-failing",
			Entry: func(*workers.Env) (workers.Handler, error) {
				return func([]byte) ([]byte, error) {
					return nil, errors.New(message)
				}, nil
			},
		}, nil
	}
}
