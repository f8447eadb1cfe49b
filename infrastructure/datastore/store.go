// Package datastore implements ports.KVStore over go-datastore, backed by an
// in-memory map or by badger on disk.
package datastore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"

	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	ds_sync "github.com/ipfs/go-datastore/sync"
	badgerds "github.com/ipfs/go-ds-badger2"
)

// DefaultNamespace scopes the guest's keys inside the datastore.
const DefaultNamespace = "ward/kv"

// Store is a KVStore over a go-datastore.
type Store struct {
	d ds.Datastore
}

// New wraps d, keeping guest keys under ns.
func New(d ds.Datastore, ns string) *Store {
	if ns == "" {
		ns = DefaultNamespace
	}
	return &Store{d: namespace.Wrap(d, ds.NewKey(ns))}
}

// NewMemory returns a store that lives as long as the process.
func NewMemory() *Store {
	return NewMemoryNamespace(DefaultNamespace)
}

// NewMemoryNamespace is NewMemory with keys kept under ns.
func NewMemoryNamespace(ns string) *Store {
	return New(ds_sync.MutexWrap(ds.NewMapDatastore()), ns)
}

// OpenBadger opens (creating if needed) a badger datastore at path.
func OpenBadger(path, ns string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := badgerds.DefaultOptions
	opts.Logger = badgerLogger{logger.With("component", "badger")}

	d, err := badgerds.NewDatastore(path, &opts)
	if err != nil {
		return nil, fmt.Errorf("open badger datastore: %w", err)
	}
	return New(d, ns), nil
}

// key maps an arbitrary guest key onto a single datastore path segment.
func key(k string) ds.Key {
	return ds.NewKey("k" + hex.EncodeToString([]byte(k)))
}

// Put implements ports.KVStore.
func (s *Store) Put(ctx context.Context, k string, value []byte) error {
	return s.d.Put(ctx, key(k), value)
}

// Get implements ports.KVStore.
func (s *Store) Get(ctx context.Context, k string) ([]byte, bool, error) {
	v, err := s.d.Get(ctx, key(k))
	if errors.Is(err, ds.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Delete implements ports.KVStore. Deleting a missing key succeeds.
func (s *Store) Delete(ctx context.Context, k string) error {
	err := s.d.Delete(ctx, key(k))
	if errors.Is(err, ds.ErrNotFound) {
		return nil
	}
	return err
}

// Close releases the underlying datastore.
func (s *Store) Close() error {
	return s.d.Close()
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
