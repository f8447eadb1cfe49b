package ports

import "context"

// KVStore is persistent string-keyed byte storage.
type KVStore interface {
	Put(ctx context.Context, key string, value []byte) error
	// Get returns found == false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Delete(ctx context.Context, key string) error
}
