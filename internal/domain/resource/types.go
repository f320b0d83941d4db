package resource

import (
	"strings"
	"sync"

	"github.com/GriffinCanCode/pageloader/internal/shared/id"
)

// Type selects the injection strategy for a resource
type Type int

const (
	TypeUnknown Type = iota
	TypeScript
	TypeStylesheet
	TypeMarkup
)

// String returns the canonical wire name
func (t Type) String() string {
	switch t {
	case TypeScript:
		return "js"
	case TypeStylesheet:
		return "css"
	case TypeMarkup:
		return "html"
	default:
		return "unknown"
	}
}

// ParseType maps a declared type name to a Type
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "js", "script", "javascript":
		return TypeScript, nil
	case "css", "style", "stylesheet":
		return TypeStylesheet, nil
	case "html", "markup", "markup-fragment", "fragment":
		return TypeMarkup, nil
	default:
		return TypeUnknown, &UnknownResourceTypeError{Type: name}
	}
}

// Scheme is the compression applied to a resource's stored bytes
type Scheme int

const (
	SchemeNone Scheme = iota
	SchemeBrotli
	SchemeGzip
	SchemeZstd
)

// Schemes lists every compressed scheme
var Schemes = []Scheme{SchemeBrotli, SchemeGzip, SchemeZstd}

// String returns the canonical wire name
func (s Scheme) String() string {
	switch s {
	case SchemeNone:
		return "none"
	case SchemeBrotli:
		return "brotli"
	case SchemeGzip:
		return "gunzip"
	case SchemeZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Compressed reports whether the worker pool must decode this scheme
func (s Scheme) Compressed() bool {
	return s != SchemeNone
}

// Extension returns the conventional file suffix for the scheme
func (s Scheme) Extension() string {
	switch s {
	case SchemeBrotli:
		return ".br"
	case SchemeGzip:
		return ".gz"
	case SchemeZstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseScheme maps a declared compression name to a Scheme
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "identity":
		return SchemeNone, nil
	case "brotli", "br":
		return SchemeBrotli, nil
	case "gunzip", "gzip", "gz":
		return SchemeGzip, nil
	case "zstd", "zst":
		return SchemeZstd, nil
	default:
		return SchemeNone, &UnknownCompressionSchemeError{Scheme: name}
	}
}

// Descriptor is the unit of work of a load batch
type Descriptor struct {
	Name   string
	Path   string
	Type   Type
	Scheme Scheme
	Module bool // script only: evaluate with module semantics

	// Invalid holds the declaration error of a descriptor that cannot be
	// loaded. The loader fails such a descriptor without touching it.
	Invalid error

	mu       sync.Mutex
	content  string
	resolved bool
}

// Resolve sets the resolved content. It succeeds exactly once.
func (d *Descriptor) Resolve(content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.resolved {
		return ErrAlreadyResolved
	}
	d.content = content
	d.resolved = true
	return nil
}

// Content returns the resolved content and whether it has been set
func (d *Descriptor) Content() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content, d.resolved
}

// Payload builds the injector input. ok is false until Resolve succeeds.
func (d *Descriptor) Payload() (Payload, bool) {
	content, ok := d.Content()
	if !ok {
		return Payload{}, false
	}
	return Payload{Type: d.Type, Content: content, Module: d.Module && d.Type == TypeScript}, true
}

// Payload is what the injector receives for one resolved resource
type Payload struct {
	Type    Type
	Content string
	Module  bool
}

// Batch is one ordered run of the loader
type Batch struct {
	ID        id.BatchID
	Resources []*Descriptor
}

// NewBatch creates a batch with a fresh ID
func NewBatch(resources ...*Descriptor) *Batch {
	return &Batch{
		ID:        id.NewBatchID(),
		Resources: resources,
	}
}

// Len returns the number of resources in the batch
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Resources)
}
