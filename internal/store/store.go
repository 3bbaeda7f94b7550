// Package store persists investigation sessions in a key-value slot store.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when no slot exists for the key.
var ErrNotFound = errors.New("slot not found")

// Repository is a durable key-value store of serialized session slots.
type Repository interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// PurgeExpired removes slots not written within ttl and returns their keys.
	PurgeExpired(ctx context.Context, ttl time.Duration) ([]string, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}

// Backend selects a Repository implementation.
type Backend struct {
	Kind   string // "sqlite", "redis" or "memory"
	DBPath string
	Redis  RedisConfig
}

// Open connects the repository named by b.Kind and verifies it is reachable.
func Open(ctx context.Context, b Backend) (Repository, error) {
	var (
		repo Repository
		err  error
	)
	switch b.Kind {
	case "sqlite", "":
		repo, err = NewSQLite(b.DBPath)
	case "redis":
		repo, err = NewRedis(ctx, b.Redis)
	case "memory":
		repo = NewMemory()
	default:
		return nil, fmt.Errorf("unknown store backend %q", b.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", b.Kind, err)
	}
	if err := repo.Ping(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("ping %s store: %w", b.Kind, err)
	}
	return repo, nil
}
