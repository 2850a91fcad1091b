// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store persists the display's records (file metadata and order,
// display settings) behind a swappable key/value backend.
//
// Every write replaces a whole record. Backends guarantee that a reader sees
// either the previous or the new record, never a partial one.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no record exists under the key.
var ErrNotFound = errors.New("record not found")

// Record keys.
const (
	KeyLibrary  = "files"
	KeySettings = "settings"
)

// Backend stores opaque records by key.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is the data directory (file), database directory (badger) or
	// database file (sqlite).
	Path  string
	Redis RedisConfig
}

// Open creates a Backend based on the configuration.
func Open(cfg Config) (Backend, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendFile:
		return OpenFileBackend(cfg.Path)
	case BackendBadger:
		return OpenBadgerBackend(cfg.Path)
	case BackendSQLite:
		return OpenSQLiteBackend(cfg.Path, DefaultSQLiteConfig())
	case BackendRedis:
		return OpenRedisBackend(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}
