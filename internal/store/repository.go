// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/bardisplay/internal/catalog"
	xglog "github.com/ManuGH/bardisplay/internal/log"
	"github.com/ManuGH/bardisplay/internal/metrics"
	"github.com/ManuGH/bardisplay/internal/settings"
)

// Repository reads and writes the typed records on top of a Backend.
//
// Updates are read-modify-write under a process-local mutex so two admin
// requests cannot interleave their read and write. Across processes sharing
// one backend the last full write wins.
type Repository struct {
	backend Backend
	mu      sync.Mutex
}

func NewRepository(b Backend) *Repository {
	return &Repository{backend: b}
}

// BackendName returns the name of the underlying backend.
func (r *Repository) BackendName() string { return r.backend.Name() }

// Ping checks that the backend is reachable.
func (r *Repository) Ping(ctx context.Context) error { return r.backend.Ping(ctx) }

// Close releases the backend.
func (r *Repository) Close() error { return r.backend.Close() }

// Library returns the persisted file metadata and order. A missing record is
// an empty library, not an error.
func (r *Repository) Library(ctx context.Context) (catalog.Library, error) {
	data, err := r.get(ctx, KeyLibrary)
	if errors.Is(err, ErrNotFound) {
		return catalog.Library{}.Clone(), nil
	}
	if err != nil {
		return catalog.Library{}, err
	}
	return catalog.DecodeLibrary(data)
}

// SaveLibrary replaces the library record.
func (r *Repository) SaveLibrary(ctx context.Context, lib catalog.Library) error {
	data, err := catalog.EncodeLibrary(lib)
	if err != nil {
		return fmt.Errorf("encode library: %w", err)
	}
	return r.put(ctx, KeyLibrary, data)
}

// UpdateLibrary applies fn to the current library and persists the result as
// one record replace. If fn returns an error nothing is written. An
// undecodable record is treated as empty and overwritten.
func (r *Repository) UpdateLibrary(ctx context.Context, fn func(catalog.Library) (catalog.Library, error)) (catalog.Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.libraryForUpdate(ctx)
	if err != nil {
		return catalog.Library{}, err
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	if err := r.SaveLibrary(ctx, next); err != nil {
		return cur, err
	}
	return next, nil
}

// libraryForUpdate reads the library for a write. A record that no longer
// decodes is replaced by an empty library, the same fallback the feed uses,
// so the write repairs it. Backend failures still abort the write.
func (r *Repository) libraryForUpdate(ctx context.Context) (catalog.Library, error) {
	data, err := r.get(ctx, KeyLibrary)
	if errors.Is(err, ErrNotFound) {
		return catalog.Library{}.Clone(), nil
	}
	if err != nil {
		return catalog.Library{}, err
	}
	lib, err := catalog.DecodeLibrary(data)
	if err != nil {
		metrics.IncStorageFallback("library")
		logger := xglog.WithComponentFromContext(ctx, "store")
		logger.Warn().Err(err).
			Str(xglog.FieldEvent, "store.library_reset").
			Str(xglog.FieldRecord, KeyLibrary).
			Str("backend", r.backend.Name()).
			Msg("library record unreadable, rewriting from empty")
		return catalog.Library{}.Clone(), nil
	}
	return lib, nil
}

// Settings returns the persisted display settings, upgraded to the current
// version. A missing record yields the defaults.
func (r *Repository) Settings(ctx context.Context) (settings.DisplaySettings, error) {
	data, err := r.get(ctx, KeySettings)
	if errors.Is(err, ErrNotFound) {
		return settings.Defaults(), nil
	}
	if err != nil {
		return settings.Defaults(), err
	}
	return settings.Decode(data)
}

// SaveSettings replaces the settings record.
func (r *Repository) SaveSettings(ctx context.Context, s settings.DisplaySettings) error {
	data, err := settings.Encode(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return r.put(ctx, KeySettings, data)
}

// UpdateSettings applies fn to the current settings and persists the result.
// If fn returns an error nothing is written and the current value is returned.
func (r *Repository) UpdateSettings(ctx context.Context, fn func(settings.DisplaySettings) (settings.DisplaySettings, error)) (settings.DisplaySettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.Settings(ctx)
	if err != nil {
		return cur, err
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	if err := r.SaveSettings(ctx, next); err != nil {
		return cur, err
	}
	return next, nil
}

func (r *Repository) get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := r.backend.Get(ctx, key)
	metrics.RecordStoreOperation(r.backend.Name(), "get", outcome(err), time.Since(start))
	return data, err
}

func (r *Repository) put(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := r.backend.Put(ctx, key, value)
	metrics.RecordStoreOperation(r.backend.Name(), "put", outcome(err), time.Since(start))
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.StoreSuccess
	case errors.Is(err, ErrNotFound):
		return metrics.StoreNotFound
	default:
		return metrics.StoreError
	}
}
