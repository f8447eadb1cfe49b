// Package clipboard provides ports.Clipboard adapters.
package clipboard

import (
	"context"
	"errors"
	"sync"

	"github.com/atotto/clipboard"

	wardErrors "github.com/moshez/ward/domain/errors"
)

// ErrUnsupported reports a platform without a usable clipboard utility.
var ErrUnsupported = errors.New("system clipboard unsupported")

// System writes to the operating system clipboard.
type System struct{}

// NewSystem returns the system clipboard, or an error when the platform has
// none (e.g. Linux without xclip, xsel or wl-copy).
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, &wardErrors.CapabilityError{Capability: "clipboard", Err: ErrUnsupported}
	}
	return &System{}, nil
}

// WriteText implements ports.Clipboard.
func (*System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return clipboard.WriteAll(text)
}

// Memory is a process-local clipboard.
type Memory struct {
	text   string
	writes int
	mu     sync.Mutex
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// WriteText implements ports.Clipboard.
func (m *Memory) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.text = text
	m.writes++
	m.mu.Unlock()
	return nil
}

// Text returns the last written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns how many writes succeeded.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
