// Package kv provides the key-value persistence collaborator behind the
// entity store. Values are whole-collection JSON blobs rewritten on every
// mutation; the contract is last write wins, with no transactions and no
// rollback.
package kv

import (
	"context"
	"fmt"

	"wildcard/internal/config"
)

// Store is the persistence contract injected into the entity store and
// the asset store. Get returns (nil, nil) for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open selects and connects the backend named by STORE_BACKEND.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendRedis:
		return OpenRedis(cfg.RedisURL, cfg.DataNamespace)
	case config.BackendSQLite, config.BackendPostgres:
		return OpenSQL(cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
