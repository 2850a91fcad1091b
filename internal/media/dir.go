// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package media lists and removes files in the uploads directory.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"

	platformfs "github.com/ManuGH/bardisplay/internal/platform/fs"
)

// ErrNotFound is returned by Remove when the file does not exist.
var ErrNotFound = errors.New("media file not found")

// Dir is the uploads directory. Uploads are flat; subdirectories are ignored.
type Dir struct {
	root string
}

func NewDir(root string) *Dir { return &Dir{root: root} }

// Root returns the directory path.
func (d *Dir) Root() string { return d.root }

// EnsureExists creates the directory if it is missing.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.root, 0o750); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	return nil
}

// ListFiles returns the names of regular files in the directory, NFC
// normalized so names typed on different platforms match the stored metadata.
// Dot files are skipped.
func (d *Dir) ListFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if len(name) > 0 && name[0] == '.' {
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		out = append(out, norm.NFC.String(name))
	}
	return out, nil
}

// Remove deletes one file. The name must be a single path element inside the directory.
func (d *Dir) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := platformfs.ConfineName(d.root, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
