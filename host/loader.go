package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultMaxModuleSize caps guest binaries read by the loader.
const DefaultMaxModuleSize = 64 * 1024 * 1024

var wasmHeader = []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}

// ErrNotWasm reports input that is not a version 1 wasm binary.
var ErrNotWasm = errors.New("not a wasm module")

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	maxSize int64
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{maxSize: DefaultMaxModuleSize}
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithMaxModuleSize sets the largest accepted module.
func WithMaxModuleSize(n int64) LoaderOption {
	return func(c *loaderConfig) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// Loader reads guest modules and checks their header before a session
// compiles them.
type Loader struct {
	config loaderConfig
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{config: cfg}
}

// Read loads a module from r.
func (l *Loader) Read(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.config.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read module: %w", err)
	}
	if int64(len(data)) > l.config.maxSize {
		return nil, fmt.Errorf("module exceeds %d bytes", l.config.maxSize)
	}
	if !bytes.HasPrefix(data, wasmHeader) {
		return nil, ErrNotWasm
	}
	return data, nil
}

// Load reads the module at path.
func (l *Loader) Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := l.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
