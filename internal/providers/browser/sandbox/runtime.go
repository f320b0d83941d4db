package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

var (
	ErrClosed    = errors.New("script runtime is closed")
	ErrTimeout   = errors.New("script execution timeout exceeded")
	ErrHostPanic = errors.New("host callback panicked")
)

// Runtime wraps a goja VM shared by every script of one document
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	console   []LogEntry
	consoleMu sync.Mutex
	sink      ConsoleSink
	source    string
}

// New creates a runtime with host globals removed
func New(config Config) (*Runtime, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	r := &Runtime{
		vm:     goja.New(),
		config: config,
	}
	if config.MaxCallStack > 0 {
		r.vm.SetMaxCallStackSize(config.MaxCallStack)
	}
	if err := r.setupGlobals(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetConsoleSink forwards console entries to sink as they are produced
func (r *Runtime) SetConsoleSink(sink ConsoleSink) {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	r.sink = sink
}

// Execute runs a classic script in the global scope
func (r *Runtime) Execute(ctx context.Context, name, script string) (*Result, error) {
	return r.run(ctx, name, script)
}

// ExecuteModule runs a script in strict mode inside its own function scope
func (r *Runtime) ExecuteModule(ctx context.Context, name, script string) (*Result, error) {
	wrapped := "(function() {\n\"use strict\";\n" + script + "\n})();"
	return r.run(ctx, name, wrapped)
}

func (r *Runtime) run(ctx context.Context, name, script string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, ErrClosed
	}

	start := time.Now()
	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	finished := make(chan struct{})
	timedOut := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-timer.C:
			close(timedOut)
			r.vm.Interrupt(ErrTimeout)
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-finished:
		}
	}()
	stop := sync.OnceFunc(func() {
		close(finished)
		<-watcherDone
		r.vm.ClearInterrupt()
	})
	defer stop()

	r.consoleMu.Lock()
	r.console = nil
	r.source = name
	r.consoleMu.Unlock()

	val, err := r.runScript(name, script)
	stop()

	result := &Result{Duration: time.Since(start)}
	r.consoleMu.Lock()
	result.Console = append([]LogEntry{}, r.console...)
	r.consoleMu.Unlock()

	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			select {
			case <-timedOut:
				return result, fmt.Errorf("%s: %w", name, ErrTimeout)
			default:
				return result, fmt.Errorf("%s: interrupted: %v", name, interrupted.Value())
			}
		}
		return result, fmt.Errorf("%s: %w", name, err)
	}

	result.Value = exportValue(val)
	return result, nil
}

// runScript turns a Go panic raised by a host callback into an error
func (r *Runtime) runScript(name, script string) (val goja.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrHostPanic, p)
		}
	}()
	return r.vm.RunScript(name, script)
}

// Get returns the exported value of a global, nil when undefined
func (r *Runtime) Get(name string) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil
	}
	return exportValue(r.vm.Get(name))
}

// setupGlobals removes host access and installs console and timers
func (r *Runtime) setupGlobals() error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	if err := r.vm.Set("window", r.vm.GlobalObject()); err != nil {
		return err
	}
	if err := r.vm.Set("self", r.vm.GlobalObject()); err != nil {
		return err
	}

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error", "debug"} {
			if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
				return err
			}
		}
		if err := r.vm.Set("console", console); err != nil {
			return err
		}
	}

	// Timers never fire: a load batch has no event loop after it completes
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval"} {
		if err := r.vm.Set(name, noop); err != nil {
			return err
		}
	}
	return nil
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		r.consoleMu.Lock()
		entry := LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Source:  r.source,
			Time:    time.Now(),
		}
		r.console = append(r.console, entry)
		sink := r.sink
		r.consoleMu.Unlock()

		if sink != nil {
			sink(entry)
		}
		return goja.Undefined()
	}
}

// exportValue converts goja value to Go value
func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Close releases the VM
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}
