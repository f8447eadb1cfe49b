// Package grantstore remembers the notification decisions an operator asked
// to keep, keyed by page origin.
package grantstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Record is one remembered decision.
type Record struct {
	Permission string    `yaml:"permission"`
	Decided    time.Time `yaml:"decided"`
}

type document struct {
	Notifications map[string]Record `yaml:"notifications,omitempty"`
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithPath sets the grants file. Default is DefaultPath().
func WithPath(path string) Option {
	return func(s *FileStore) {
		s.path = path
	}
}

// WithFilePermissions sets the mode of the grants file. Default is 0o600.
func WithFilePermissions(perm os.FileMode) Option {
	return func(s *FileStore) {
		s.filePerm = perm
	}
}

// WithDirPermissions sets the mode of directories created for the file.
// Default is 0o700.
func WithDirPermissions(perm os.FileMode) Option {
	return func(s *FileStore) {
		s.dirPerm = perm
	}
}

// DefaultPath is grants.yaml under the user's configuration directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ward", "grants.yaml")
}

// FileStore keeps records in a YAML file, rewritten whole on every save.
// It implements notify.PermissionStore.
type FileStore struct {
	path     string
	filePerm os.FileMode
	dirPerm  os.FileMode
	now      func() time.Time

	mu sync.Mutex
}

// NewFileStore creates a store. The file is not touched until first use.
func NewFileStore(opts ...Option) *FileStore {
	s := &FileStore{
		path:     DefaultPath(),
		filePerm: 0o600,
		dirPerm:  0o700,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the grants file.
func (s *FileStore) Path() string {
	return s.path
}

// LoadPermission returns the decision remembered for origin.
func (s *FileStore) LoadPermission(origin string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", false, err
	}
	rec, ok := doc.Notifications[origin]
	return rec.Permission, ok, nil
}

// SavePermission remembers permission for origin, keeping other origins.
// Only "granted" and "denied" can be remembered.
func (s *FileStore) SavePermission(origin, permission string) error {
	if permission != "granted" && permission != "denied" {
		return fmt.Errorf("grant store: cannot remember %q", permission)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if doc.Notifications == nil {
		doc.Notifications = make(map[string]Record)
	}
	doc.Notifications[origin] = Record{Permission: permission, Decided: s.now().UTC()}
	return s.write(doc)
}

func (s *FileStore) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("grant store: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("grant store: parse %s: %w", s.path, err)
	}
	return &doc, nil
}

// write replaces the file through a rename so readers never see a partial
// document.
func (s *FileStore) write(doc *document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("grant store: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, s.dirPerm); err != nil {
		return fmt.Errorf("grant store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".grants-*")
	if err != nil {
		return fmt.Errorf("grant store: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("grant store: %w", err)
	}
	if err := tmp.Chmod(s.filePerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("grant store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("grant store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("grant store: %w", err)
	}
	return nil
}
