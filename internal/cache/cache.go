// Package cache keeps processed extraction results keyed by input identity so
// that re-running a batch skips documents already handled.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/fiscal-extract/internal/common"
)

// Store maps a key to an opaque serialized result.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// HealthChecker is implemented by stores backed by a database.
type HealthChecker interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// NewStore opens the store selected by cfg.Driver. A "none" driver returns
// a nil Store; callers treat that as caching disabled.
func NewStore(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := OpenSQLite(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, common.NewAppError(common.CodeCache, "open sqlite cache", err)
		}
		return s, nil
	case "postgres":
		s, err := OpenPostgres(ctx, PostgresConfig{DSN: cfg.DSN, MaxConns: cfg.MaxConns}, logger)
		if err != nil {
			return nil, common.NewAppError(common.CodeCache, "open postgres cache", err)
		}
		return s, nil
	default:
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown cache driver %q", cfg.Driver), nil)
	}
}

type MemoryStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
