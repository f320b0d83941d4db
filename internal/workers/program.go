package workers

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/providers/codec"
)

// ErrNoDecoder is returned by an entry that finds no decoder in its Env
var ErrNoDecoder = errors.New("no decoder installed")

// Env is the global scope of a worker. Support steps populate it.
type Env struct {
	Decoder codec.Decoder

	closers []func()
}

// OnClose registers a release function run when the process terminates
func (e *Env) OnClose(fn func()) {
	e.closers = append(e.closers, fn)
}

func (e *Env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

// Support installs a capability into the worker before its entry runs
type Support func(env *Env) error

// Handler serves one request inside the worker
type Handler func(data []byte) ([]byte, error)

// Entry builds the worker's request handler from its Env
type Entry func(env *Env) (Handler, error)

// Program is the code a worker is started with: support steps followed by
// an entry routine
type Program struct {
	Name    string
	Support []Support
	Entry   Entry
}

// ProgramSource returns the program for a scheme
type ProgramSource func(scheme resource.Scheme) (Program, error)

// DecoderLibrary installs the reference decoder for scheme
func DecoderLibrary(scheme resource.Scheme) Support {
	return func(env *Env) error {
		dec, err := codec.ForScheme(scheme)
		if err != nil {
			return err
		}
		env.Decoder = dec
		if c, ok := dec.(codec.Closer); ok {
			env.OnClose(c.Close)
		}
		return nil
	}
}

// DecodeEntry answers each request by running the installed decoder
func DecodeEntry(env *Env) (Handler, error) {
	dec := env.Decoder
	if dec == nil {
		return nil, ErrNoDecoder
	}
	return func(data []byte) ([]byte, error) {
		return dec.Decode(data)
	}, nil
}

// DefaultPrograms builds the decompression program for every compressed scheme
func DefaultPrograms(scheme resource.Scheme) (Program, error) {
	switch scheme {
	case resource.SchemeBrotli, resource.SchemeGzip, resource.SchemeZstd:
		return Program{
			Name:    fmt.Sprintf("%s-worker", scheme),
			Support: []Support{DecoderLibrary(scheme)},
			Entry:   DecodeEntry,
		}, nil
	default:
		return Program{}, &resource.UnknownCompressionSchemeError{Scheme: scheme.String()}
	}
}
