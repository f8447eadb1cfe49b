// Package filepicker resolves file-input selections to files under a root
// directory.
package filepicker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
)

// SelectionFunc reports the path selected through a file input node,
// relative to the picker's root.
type SelectionFunc func(input ports.Node) (name string, ok bool)

// DirPicker opens selections inside a single directory tree. Paths escaping
// the root are refused by os.Root.
type DirPicker struct {
	root      *os.Root
	dir       string
	selection SelectionFunc
	policy    ports.Policy
}

// Option configures a DirPicker.
type Option func(*DirPicker)

// WithPolicy checks each selection's absolute path before it is opened.
func WithPolicy(p ports.Policy) Option {
	return func(d *DirPicker) {
		d.policy = p
	}
}

// NewDirPicker opens dir as the picker root.
func NewDirPicker(dir string, selection SelectionFunc, opts ...Option) (*DirPicker, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("open picker root: %w", err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("open picker root: %w", err)
	}
	p := &DirPicker{root: root, dir: abs, selection: selection}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Pick implements ports.FilePicker.
func (p *DirPicker) Pick(ctx context.Context, input ports.Node) (ports.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.selection == nil {
		return nil, nil
	}
	name, ok := p.selection(input)
	if !ok || name == "" {
		return nil, nil
	}

	if p.policy != nil && !p.policy.CheckFile(ctx, entities.FileRequest{Path: filepath.Join(p.dir, filepath.FromSlash(name))}) {
		return nil, &fs.PathError{Op: "pick", Path: name, Err: fs.ErrPermission}
	}

	f, err := p.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, &fs.PathError{Op: "pick", Path: name, Err: fs.ErrInvalid}
	}
	return &file{File: f, name: path.Base(name), size: info.Size()}, nil
}

// Close releases the root directory.
func (p *DirPicker) Close() error {
	return p.root.Close()
}

type file struct {
	*os.File
	name string
	size int64
}

func (f *file) Name() string { return f.name }
func (f *file) Size() int64  { return f.size }
