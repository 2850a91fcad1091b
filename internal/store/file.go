// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// FileBackend stores each record as <dir>/<key>.json, the layout older
// installations already have on disk (files.json, settings.json).
type FileBackend struct {
	dir string
}

// OpenFileBackend creates dir if needed.
func OpenFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("file backend: data directory is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("file backend: create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Name() string { return BackendFile }

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file backend: read %s: %w", key, err)
	}
	return data, nil
}

// Put writes the record through a pending file that is fsynced and renamed
// over the old one, so a crash leaves either the old or the new record.
func (f *FileBackend) Put(_ context.Context, key string, value []byte) error {
	pending, err := renameio.NewPendingFile(f.path(key), renameio.WithPermissions(0o640))
	if err != nil {
		return fmt.Errorf("file backend: create pending %s: %w", key, err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(value); err != nil {
		return fmt.Errorf("file backend: write %s: %w", key, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("file backend: replace %s: %w", key, err)
	}
	return nil
}

func (f *FileBackend) Ping(context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("file backend: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("file backend: %s is not a directory", f.dir)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }
