package manifest

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
)

// Format identifies a manifest encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
	ErrEmptyPath         = errors.New("resource path is required")
)

// Entry declares one resource
type Entry struct {
	Name        string `yaml:"name" toml:"name" json:"name"`
	Path        string `yaml:"path" toml:"path" json:"path"`
	Type        string `yaml:"type" toml:"type" json:"type"`
	Compression string `yaml:"compression" toml:"compression" json:"compression"`
	Module      bool   `yaml:"module" toml:"module" json:"module"`
}

// Manifest is the static configuration of a page load
type Manifest struct {
	Favicon   string  `yaml:"favicon" toml:"favicon" json:"favicon"`
	Resources []Entry `yaml:"resources" toml:"resources" json:"resources"`
}

// Default returns the built-in page batch
func Default() *Manifest {
	return &Manifest{
		Favicon: "./recursiveLabsLogo.png",
		Resources: []Entry{
			{Name: "three.min.js.br", Path: "./three.min.js.br", Type: "js", Compression: "brotli"},
			{Name: "index.js", Path: "./index.js", Type: "js", Compression: "none"},
		},
	}
}

// FormatFor picks a format from a file extension
func FormatFor(file string) (Format, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(file))
	}
}

// Load reads and validates a manifest file
func Load(file string) (*Manifest, error) {
	format, err := FormatFor(file)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes and validates manifest data
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	var err error

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	case FormatTOML:
		err = toml.Unmarshal(data, &m)
	case FormatJSON:
		err = sonic.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s manifest: %w", format, err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest can be loaded at all. Unknown types and
// schemes are not errors here; they fail their own resource at load time.
func (m *Manifest) Validate() error {
	var errs []error
	for i, e := range m.Resources {
		if strings.TrimSpace(e.Path) == "" {
			errs = append(errs, fmt.Errorf("resources[%d]: %w", i, ErrEmptyPath))
		}
	}
	return errors.Join(errs...)
}

// Batch converts the manifest into descriptors in declaration order
func (m *Manifest) Batch() *resource.Batch {
	descriptors := make([]*resource.Descriptor, 0, len(m.Resources))
	for _, e := range m.Resources {
		descriptors = append(descriptors, e.Descriptor())
	}
	return resource.NewBatch(descriptors...)
}

// Descriptor builds the resource for one entry. Parse failures are carried
// on the descriptor rather than returned.
func (e Entry) Descriptor() *resource.Descriptor {
	d := &resource.Descriptor{
		Name:   e.Name,
		Path:   e.Path,
		Module: e.Module,
	}
	if d.Name == "" {
		d.Name = path.Base(filepath.ToSlash(e.Path))
	}

	typ, typeErr := resource.ParseType(e.Type)
	scheme, schemeErr := resource.ParseScheme(e.Compression)
	d.Type = typ
	d.Scheme = scheme

	switch {
	case typeErr != nil:
		d.Invalid = typeErr
	case schemeErr != nil:
		d.Invalid = schemeErr
	}
	return d
}

// Encode serializes the manifest in the given format
func (m *Manifest) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(m)
	case FormatTOML:
		return toml.Marshal(m)
	case FormatJSON:
		return sonic.MarshalIndent(m, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
