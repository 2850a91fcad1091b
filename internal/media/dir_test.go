// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformfs "github.com/ManuGH/bardisplay/internal/platform/fs"
)

func seed(t *testing.T, names ...string) *Dir {
	t.Helper()
	root := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(root, n), []byte("x"), 0o600))
	}
	return NewDir(root)
}

func TestListFiles(t *testing.T) {
	d := seed(t, "b.png", "a.mp4", ".DS_Store", "menu.pdf")
	require.NoError(t, os.Mkdir(filepath.Join(d.Root(), "nested"), 0o750))

	got, err := d.ListFiles(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.mp4", "b.png", "menu.pdf"}, got)
}

func TestListFiles_NFC(t *testing.T) {
	// "Käse" with a combining diaeresis, as macOS writes it
	d := seed(t, "Ka\u0308se.png")
	got, err := d.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"K\u00e4se.png"}, got)
}

func TestListFiles_MissingDir(t *testing.T) {
	d := NewDir(filepath.Join(t.TempDir(), "missing"))
	_, err := d.ListFiles(context.Background())
	assert.Error(t, err)

	require.NoError(t, d.EnsureExists())
	got, err := d.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRemove(t *testing.T) {
	d := seed(t, "a.png")
	ctx := context.Background()

	require.NoError(t, d.Remove(ctx, "a.png"))
	_, err := os.Stat(filepath.Join(d.Root(), "a.png"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, d.Remove(ctx, "a.png"), ErrNotFound)
	assert.ErrorIs(t, d.Remove(ctx, "../a.png"), platformfs.ErrOutsideRoot)
}
