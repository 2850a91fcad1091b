// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "*", want: "*"},
		{in: "https://Bar.Example", want: "https://bar.example"},
		{in: "HTTP://bar.example:8080/", want: "http://bar.example:8080"},
		{in: "https://bär.example", want: "https://xn--br-via.example"},
		{in: "http://[::1]:8030", want: "http://[::1]:8030"},
		{in: "http://192.168.1.20", want: "http://192.168.1.20"},
		{in: "ftp://bar.example", wantErr: true},
		{in: "https://bar.example/admin", wantErr: true},
		{in: "https://user@bar.example", wantErr: true},
		{in: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeOrigin(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_NormalizesAllowedOrigins(t *testing.T) {
	t.Setenv("BARDISPLAY_DATA", t.TempDir())
	t.Setenv("BARDISPLAY_ALLOWED_ORIGINS", "https://Bar.Example, https://bär.example")

	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)

	want := []string{"https://bar.example", "https://xn--br-via.example"}
	if diff := cmp.Diff(want, cfg.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
}
