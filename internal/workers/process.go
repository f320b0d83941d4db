package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pageloader/internal/shared/id"
)

var (
	ErrTerminated     = errors.New("worker terminated")
	ErrCrashed        = errors.New("worker crashed")
	ErrBusy           = errors.New("worker already has a request in flight")
	ErrStartupTimeout = errors.New("worker did not become ready in time")
)

// DefaultStartupTimeout bounds the wait for the readiness signal
const DefaultStartupTimeout = 5 * time.Second

// State is the lifecycle state of a worker process
type State int32

const (
	StateStarting State = iota
	StateReady
	StateBusy
	StateTerminated
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// SpawnOptions configures a worker startup
type SpawnOptions struct {
	StartupTimeout time.Duration
	Logger         *logging.Logger
}

// Process is a live worker execution context
type Process struct {
	id     id.WorkerID
	name   string
	logger *logging.Logger

	state    atomic.Int32
	inflight atomic.Bool

	requests chan request
	done     chan struct{} // closed by Terminate
	exited   chan struct{} // closed when the goroutine returns
	once     sync.Once

	crashErr error // written before exited is closed
}

// Spawn starts a worker running prog and blocks until it is ready
func Spawn(ctx context.Context, prog Program, opts SpawnOptions) (*Process, error) {
	if prog.Entry == nil {
		return nil, fmt.Errorf("program %q has no entry", prog.Name)
	}
	timeout := opts.StartupTimeout
	if timeout <= 0 {
		timeout = DefaultStartupTimeout
	}

	p := &Process{
		id:       id.NewWorkerID(),
		name:     prog.Name,
		requests: make(chan request),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	p.logger = opts.Logger.Named("worker").With(
		zap.String("worker_id", p.id.String()),
		zap.String("program", prog.Name),
	)
	p.state.Store(int32(StateStarting))

	ready := make(chan error, 1)
	go p.run(prog, ready)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-ready:
		if err != nil {
			p.Terminate()
			return nil, err
		}
	case <-timer.C:
		p.Terminate()
		return nil, ErrStartupTimeout
	case <-ctx.Done():
		p.Terminate()
		return nil, ctx.Err()
	}

	p.logger.Debug("worker ready")
	return p, nil
}

// run is the body of the worker goroutine
func (p *Process) run(prog Program, ready chan<- error) {
	env := &Env{}
	defer close(p.exited)
	defer env.close()

	handler, err := p.load(prog, env)
	if err != nil {
		ready <- err
		return
	}

	if !p.state.CompareAndSwap(int32(StateStarting), int32(StateReady)) {
		// terminated during startup
		ready <- ErrTerminated
		return
	}
	ready <- nil

	for {
		select {
		case <-p.done:
			return
		case req := <-p.requests:
			if !p.state.CompareAndSwap(int32(StateReady), int32(StateBusy)) {
				return
			}
			reply, crash := p.serve(handler, req.data)
			if crash != nil {
				p.crashErr = crash
				p.state.Store(int32(StateTerminated))
				p.logger.Error("worker crashed", zap.Error(crash))
				return
			}
			req.reply <- reply
			p.state.CompareAndSwap(int32(StateBusy), int32(StateReady))
		}
	}
}

// load runs support steps then the entry, converting panics to errors
func (p *Process) load(prog Program, env *Env) (handler Handler, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic during startup: %v", prog.Name, r)
		}
	}()

	for i, support := range prog.Support {
		if err := support(env); err != nil {
			return nil, fmt.Errorf("%s: support %d: %w", prog.Name, i, err)
		}
	}
	handler, err = prog.Entry(env)
	if err != nil {
		return nil, fmt.Errorf("%s: entry: %w", prog.Name, err)
	}
	return handler, nil
}

// serve runs the handler for one request. Handler errors become error
// replies; a handler panic is reported as a crash.
func (p *Process) serve(handler Handler, data []byte) (reply Reply, crash error) {
	defer func() {
		if r := recover(); r != nil {
			crash = fmt.Errorf("%w: %v", ErrCrashed, r)
		}
	}()

	out, err := handler(data)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "decompression failed"
		}
		return Reply{Error: msg}, nil
	}
	return Reply{Data: out}, nil
}

// Send transfers buf to the worker and waits for its single reply
func (p *Process) Send(ctx context.Context, buf *Buffer) (Reply, error) {
	if !p.inflight.CompareAndSwap(false, true) {
		return Reply{}, ErrBusy
	}
	defer p.inflight.Store(false)

	if p.State() == StateTerminated {
		return Reply{}, p.exitErr()
	}

	data, err := buf.Transfer()
	if err != nil {
		return Reply{}, err
	}

	req := request{data: data, reply: make(chan Reply, 1)}

	select {
	case p.requests <- req:
	case <-p.done:
		return Reply{}, ErrTerminated
	case <-p.exited:
		return Reply{}, p.exitErr()
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case reply := <-req.reply:
		return reply, nil
	case <-p.done:
		return Reply{}, ErrTerminated
	case <-p.exited:
		return Reply{}, p.exitErr()
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

func (p *Process) exitErr() error {
	select {
	case <-p.exited:
		if p.crashErr != nil {
			return p.crashErr
		}
	default:
	}
	return ErrTerminated
}

// Terminate stops the worker without draining. It is idempotent.
func (p *Process) Terminate() {
	p.once.Do(func() {
		p.state.Store(int32(StateTerminated))
		close(p.done)
		p.logger.Debug("worker terminated")
	})
}

// Exited is closed once the worker goroutine has returned
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// State returns the current lifecycle state
func (p *Process) State() State {
	return State(p.state.Load())
}

// Alive reports whether the process can still serve requests
func (p *Process) Alive() bool {
	return p.State() != StateTerminated
}

// ID returns the worker's identifier
func (p *Process) ID() id.WorkerID {
	return p.id
}

// Name returns the program name the worker was started with
func (p *Process) Name() string {
	return p.name
}
