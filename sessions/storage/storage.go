package storage

import (
	"context"
	"fmt"

	"github.com/jrsteele09/sportify-auth-client/internal/config"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
)

// Keys of the two persisted entries. Absence of KeyToken means logged out.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	// ErrNotFound is returned by Get when the key has no value
	ErrNotFound = sperrors.ErrNotFound
	// ErrCorrupt is returned when the persisted document cannot be decoded
	ErrCorrupt = sperrors.ErrCorrupt
)

// Storage is the durable key-value store the session is mirrored into.
// Writes replace whole values; there are no partial field updates.
type Storage interface {
	// Get returns the value for key or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// SetAll writes every entry in one operation
	SetAll(ctx context.Context, entries map[string]string) error

	// DeleteAll removes the keys; missing keys are not an error
	DeleteAll(ctx context.Context, keys ...string) error

	Close() error
}

// Notifier is implemented by storages shared between processes. It carries
// the payload-less "auth changed" notification to other instances.
type Notifier interface {
	Publish(ctx context.Context) error

	// Listen calls fn for every notification published by another instance
	// and blocks until ctx is done.
	Listen(ctx context.Context, fn func()) error
}

// Open creates the storage selected by the configuration.
func Open(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.GetStorageBackend() {
	case config.StorageBackendFile, "":
		return NewFileStorage(cfg.GetStoragePath())
	case config.StorageBackendSQLite:
		return NewSQLiteStorage(ctx, cfg.GetStoragePath())
	case config.StorageBackendRedis:
		return NewRedisStorageFromURL(ctx, cfg.GetRedisURL(), cfg.GetRedisPrefix())
	case config.StorageBackendMemory:
		return NewInMemoryStorage(), nil
	}
	return nil, fmt.Errorf("[storage.Open] unknown storage backend %q: %w", cfg.GetStorageBackend(), sperrors.ErrUnsupported)
}
